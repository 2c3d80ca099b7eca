package views

// DefaultPerPage is how many projections a page shows.
const DefaultPerPage = 3

// Page is one page of a client-side paginated list.
type Page[T any] struct {
	Items   []T
	Number  int   // 1-based, clamped to [1, len(Numbers)]
	Numbers []int // 1..ceil(total/perPage); empty for an empty list
	Total   int
}

// Paginate returns page number of items. Out-of-range pages are clamped; a non-positive
// perPage uses [DefaultPerPage].
func Paginate[T any](items []T, number, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	count := (len(items) + perPage - 1) / perPage
	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = i + 1
	}

	if number > count {
		number = count
	}
	if number < 1 {
		number = 1
	}

	p := Page[T]{Number: number, Numbers: numbers, Total: len(items)}
	if count == 0 {
		return p
	}

	start := (number - 1) * perPage
	end := min(start+perPage, len(items))
	p.Items = items[start:end]
	return p
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < len(p.Numbers) }

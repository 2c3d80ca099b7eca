package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestValues(t *testing.T) {
	t.Run("reference-preserving envelope", func(t *testing.T) {
		body := `{"$id":"1","$values":[{"id":1,"title":"Alien"},{"id":2,"title":"Heat","isDeleted":true}]}`

		var movies Values[Movie]
		if err := json.Unmarshal([]byte(body), &movies); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(movies) != 2 || movies[0].Title != "Alien" || !movies[1].IsDeleted {
			t.Errorf("unexpected movies: %+v", movies)
		}
	})

	t.Run("nested ticket envelope", func(t *testing.T) {
		body := `{"values":{"$id":"2","$values":[{"id":7,"projectionMovieTitle":"Alien","seat":12,"price":8.5}]}}`

		var tickets Values[Ticket]
		if err := json.Unmarshal([]byte(body), &tickets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tickets) != 1 || tickets[0].Seat != "12" {
			t.Errorf("unexpected tickets: %+v", tickets)
		}
	})

	t.Run("bare array", func(t *testing.T) {
		var seats Values[Seat]
		if err := json.Unmarshal([]byte(`[{"id":1,"number":"A1","isAvailable":true}]`), &seats); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seats) != 1 || seats[0].Number != "A1" {
			t.Errorf("unexpected seats: %+v", seats)
		}
	})

	t.Run("null is empty", func(t *testing.T) {
		var users Values[User]
		if err := json.Unmarshal([]byte(`null`), &users); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if users == nil || len(users) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", users)
		}
	})

	t.Run("object without values", func(t *testing.T) {
		var users Values[User]
		err := json.Unmarshal([]byte(`{"items":[]}`), &users)
		if err == nil || !strings.Contains(err.Error(), "$values") {
			t.Errorf("expected missing $values error, got %v", err)
		}
	})
}

func TestTime(t *testing.T) {
	t.Run("zone-less timestamps are local", func(t *testing.T) {
		var p Projection
		if err := json.Unmarshal([]byte(`{"dateTime":"2024-05-17T19:30:00"}`), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2024, 5, 17, 19, 30, 0, 0, time.Local)
		if !p.DateTime.Equal(want) {
			t.Errorf("got %v, want %v", p.DateTime.Time, want)
		}
	})

	t.Run("fractional seconds", func(t *testing.T) {
		parsed, err := ParseTime("2024-05-17T19:30:00.1234567")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if parsed.Second() != 0 || parsed.Minute() != 30 {
			t.Errorf("unexpected parse: %v", parsed.Time)
		}
	})

	t.Run("RFC 3339 keeps its zone", func(t *testing.T) {
		parsed, err := ParseTime("2024-05-17T19:30:00Z")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !parsed.Equal(time.Date(2024, 5, 17, 19, 30, 0, 0, time.UTC)) {
			t.Errorf("unexpected parse: %v", parsed.Time)
		}
	})

	t.Run("encodes UTC RFC 3339", func(t *testing.T) {
		in := ProjectionInput{DateTime: Time{time.Date(2024, 5, 17, 19, 30, 0, 0, time.UTC)}}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"dateTime":"2024-05-17T19:30:00Z"`) {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := ParseTime("tomorrow"); err == nil {
			t.Error("expected error")
		}
	})
}

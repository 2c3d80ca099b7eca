package views

import (
	"strconv"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Messages shown for rejected forms.
const (
	MsgEmptyCredentials = "Username and password cannot be empty!"
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidRole      = "Invalid role. Only 'User' or 'Admin' are allowed."
	MsgNoSeat           = "Please select a seat"
)

// ValidationError is a form rejected before any request; its message is shown verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets [errors.Is] match [shared.ErrInvalidInput].
func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// LoginForm collects credentials.
type LoginForm struct {
	Username string
	Password string
}

// Validate rejects blank fields.
func (f LoginForm) Validate() (models.LoginRequest, error) {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" {
		return models.LoginRequest{}, invalid(MsgEmptyCredentials)
	}
	return models.LoginRequest{Username: strings.TrimSpace(f.Username), Password: f.Password}, nil
}

// RegistrationForm collects a new account. An empty role registers a User.
type RegistrationForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
}

// Validate checks the passwords match and the role is known.
func (f RegistrationForm) Validate() (models.RegisterRequest, error) {
	if f.Password != f.ConfirmPassword {
		return models.RegisterRequest{}, invalid(MsgPasswordMismatch)
	}
	if strings.TrimSpace(f.Username) == "" || f.Password == "" {
		return models.RegisterRequest{}, invalid(MsgEmptyCredentials)
	}

	role := models.RoleUser
	if strings.TrimSpace(f.Role) != "" {
		if role = models.NormalizeRole(f.Role); role == "" {
			return models.RegisterRequest{}, invalid(MsgInvalidRole)
		}
	}

	return models.RegisterRequest{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		Role:     role,
	}, nil
}

// PasswordForm changes the current user's password.
type PasswordForm struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// Validate requires both passwords.
func (f PasswordForm) Validate() (models.ChangePasswordRequest, error) {
	if f.CurrentPassword == "" || f.NewPassword == "" {
		return models.ChangePasswordRequest{}, invalid("Current and new password are required")
	}
	return models.ChangePasswordRequest{Username: f.Username, CurrentPassword: f.CurrentPassword, NewPassword: f.NewPassword}, nil
}

// RoleForm changes another user's role.
type RoleForm struct {
	Username string
	Role     string
}

// Validate normalizes the role ("admin" -> "Admin") and rejects anything else.
func (f RoleForm) Validate() (models.UpdateRoleRequest, error) {
	role := models.NormalizeRole(f.Role)
	if role == "" {
		return models.UpdateRoleRequest{}, invalid(MsgInvalidRole)
	}
	return models.UpdateRoleRequest{Username: f.Username, Role: role}, nil
}

// MovieForm is the add/edit movie form. A non-empty ID edits that movie.
type MovieForm struct {
	ID            string
	Title         string
	Director      string
	Actors        string
	Genre         string
	Duration      string
	Distributor   string
	CountryOrigin string
	ReleaseYear   string
	Description   string
}

// MovieFormFrom prefills the form to edit m.
func MovieFormFrom(m models.Movie) MovieForm {
	return MovieForm{
		ID:            strconv.Itoa(m.ID),
		Title:         m.Title,
		Director:      m.Director,
		Actors:        m.Actors,
		Genre:         m.Genre,
		Duration:      strconv.Itoa(m.Duration),
		Distributor:   m.Distributor,
		CountryOrigin: m.CountryOrigin,
		ReleaseYear:   strconv.Itoa(m.ReleaseYear),
		Description:   m.Description,
	}
}

// Editing reports whether the form updates an existing movie.
func (f MovieForm) Editing() bool { return strings.TrimSpace(f.ID) != "" }

// Validate converts the form into an API payload.
func (f MovieForm) Validate() (models.MovieInput, error) {
	in := models.MovieInput{
		Title:         strings.TrimSpace(f.Title),
		Director:      strings.TrimSpace(f.Director),
		Actors:        strings.TrimSpace(f.Actors),
		Genre:         strings.TrimSpace(f.Genre),
		Distributor:   strings.TrimSpace(f.Distributor),
		CountryOrigin: strings.TrimSpace(f.CountryOrigin),
		Description:   strings.TrimSpace(f.Description),
	}

	if f.Editing() {
		id, err := strconv.Atoi(strings.TrimSpace(f.ID))
		if err != nil || id <= 0 {
			return in, invalid("Invalid movie id")
		}
		in.ID = id
	}
	if in.Title == "" {
		return in, invalid("Title is required")
	}

	var err error
	if in.Duration, err = optionalInt(f.Duration); err != nil || in.Duration < 0 {
		return in, invalid("Duration must be a whole number of minutes")
	}
	if in.ReleaseYear, err = optionalInt(f.ReleaseYear); err != nil || in.ReleaseYear < 0 {
		return in, invalid("Release year must be a number")
	}
	return in, nil
}

// ProjectionForm is the add projection form.
type ProjectionForm struct {
	MovieID          string
	ProjectionTypeID string
	TheaterID        string
	DateTime         string // "2006-01-02T15:04" as sent by datetime-local inputs
	Price            string
}

// Validate converts the form into an API payload.
func (f ProjectionForm) Validate() (models.ProjectionInput, error) {
	var in models.ProjectionInput
	var err error

	if in.MovieID, err = requiredID(f.MovieID); err != nil {
		return in, invalid("Select a movie")
	}
	if in.ProjectionTypeID, err = requiredID(f.ProjectionTypeID); err != nil {
		return in, invalid("Select a projection type")
	}
	if in.TheaterID, err = requiredID(f.TheaterID); err != nil {
		return in, invalid("Select a theater")
	}
	if in.DateTime, err = models.ParseTime(f.DateTime); err != nil {
		return in, invalid("Enter the projection date and time")
	}
	if in.Price, err = strconv.ParseFloat(strings.TrimSpace(f.Price), 64); err != nil || in.Price <= 0 {
		return in, invalid("Price must be a positive number")
	}
	return in, nil
}

func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func requiredID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidArgument
	}
	return id, nil
}

// SeatChoice parses the seat picked in the picker.
func SeatChoice(s string) (int, error) {
	id, err := requiredID(s)
	if err != nil {
		return 0, invalid(MsgNoSeat)
	}
	return id, nil
}

// Package validation holds field-level input checks for user and post data.
package validation

import (
	"github.com/Dan9191/blog-service/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field messages
const (
	MsgEmail    = "E-mail is invalid."
	MsgPassword = "Password must be between 5 and 16 characters."
	MsgTitle    = "Title is invalid"
	MsgContent  = "Content is invalid"
)

// Result is the outcome of a single field check
type Result struct {
	OK      bool
	Message string
}

func check(value, rule, message string) Result {
	if err := validate.Var(value, rule); err != nil {
		return Result{OK: false, Message: message}
	}
	return Result{OK: true}
}

// Email requires a syntactically valid address
func Email(v string) Result { return check(v, "required,email", MsgEmail) }

// Password requires 5 to 16 characters
func Password(v string) Result { return check(v, "required,min=5,max=16", MsgPassword) }

// Title requires at least 5 characters
func Title(v string) Result { return check(v, "required,min=5", MsgTitle) }

// Content requires at least 5 characters
func Content(v string) Result { return check(v, "required,min=5", MsgContent) }

// Errors accumulates failed checks in order
type Errors []string

// Add records r if it failed
func (e *Errors) Add(r Result) {
	if !r.OK {
		*e = append(*e, r.Message)
	}
}

// Err returns an InvalidInput error carrying every message, or nil when empty
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperr.Invalid(e)
}

// Post checks the editable post fields
func Post(title, content string) error {
	var errs Errors
	errs.Add(Title(title))
	errs.Add(Content(content))
	return errs.Err()
}

// Signup checks the fields of a new account
func Signup(email, password string) error {
	var errs Errors
	errs.Add(Email(email))
	errs.Add(Password(password))
	return errs.Err()
}

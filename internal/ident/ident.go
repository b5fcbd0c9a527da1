// Package ident generates and checks the opaque identifiers that address
// uploaded assets and rendered artifacts.
//
// Identifiers are random v4 UUIDs. They are never derived from user input and
// are validated as tokens before they are ever joined onto a storage path.
package ident

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidID is returned for anything that is not a well-formed identifier.
var ErrInvalidID = errors.New("invalid identifier")

var validate = validator.New()

// New returns a fresh collision-resistant identifier.
func New() string {
	return uuid.NewString()
}

// Validate reports whether id is a canonical identifier produced by New.
// Path separators, dots and any other filesystem syntax are rejected.
func Validate(id string) error {
	if id != strings.ToLower(id) {
		return ErrInvalidID
	}
	if err := validate.Var(id, "required,uuid4"); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Valid is the boolean form of Validate.
func Valid(id string) bool {
	return Validate(id) == nil
}

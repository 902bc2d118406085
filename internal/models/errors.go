package models

import (
	"errors"
	"fmt"
)

var (
	ErrSizeMismatch = errors.New("classes should have the same number of realizations and attributes")
	ErrDuplicate    = errors.New("this class has already been loaded")
	ErrEmptyClass   = errors.New("class has no attributes or realizations")
	ErrClassIndex   = errors.New("class index out of range")
)

// LoadErrorKind enumerates the reasons the loading boundary rejects a class.
type LoadErrorKind int

const (
	LoadSizeMismatch LoadErrorKind = iota
	LoadDuplicate
	LoadEmpty
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadSizeMismatch:
		return "size mismatch"
	case LoadDuplicate:
		return "duplicate"
	case LoadEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// LoadError describes a class rejected at the loading boundary.
type LoadError struct {
	Kind           LoadErrorKind
	Name           string
	Width          int
	Height         int
	ExpectedWidth  int
	ExpectedHeight int
	// DuplicateOf is the index of the already loaded class for LoadDuplicate.
	DuplicateOf int
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case LoadSizeMismatch:
		return fmt.Sprintf("class %q is %dx%d, expected %dx%d: %v",
			e.Name, e.Width, e.Height, e.ExpectedWidth, e.ExpectedHeight, ErrSizeMismatch)
	case LoadDuplicate:
		return fmt.Sprintf("class %q duplicates class %d: %v", e.Name, e.DuplicateOf, ErrDuplicate)
	case LoadEmpty:
		return fmt.Sprintf("class %q is %dx%d: %v", e.Name, e.Width, e.Height, ErrEmptyClass)
	default:
		return fmt.Sprintf("class %q rejected", e.Name)
	}
}

func (e *LoadError) Unwrap() error {
	switch e.Kind {
	case LoadSizeMismatch:
		return ErrSizeMismatch
	case LoadDuplicate:
		return ErrDuplicate
	case LoadEmpty:
		return ErrEmptyClass
	default:
		return nil
	}
}

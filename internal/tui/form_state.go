package tui

import (
	"strings"

	"github.com/tinytelemetry/stockroom/internal/model"
)

// FormState tracks add-product form validity. It is created once per page
// and passed to the handlers that read or change it.
type FormState struct {
	NameValid      bool
	PriceValid     bool
	ReferenceValid bool
}

// NewFormState returns the state for an empty form.
func NewFormState() *FormState {
	return &FormState{}
}

// FormValid reports whether the form may be submitted.
func (s *FormState) FormValid() bool {
	return s.NameValid && s.PriceValid && s.ReferenceValid
}

// ValidateName records whether name is usable.
func (s *FormState) ValidateName(name string) {
	s.NameValid = strings.TrimSpace(name) != ""
}

// ValidatePrice records whether price is a storable non-negative number.
func (s *FormState) ValidatePrice(price string) {
	_, err := model.ParsePrice(price)
	s.PriceValid = err == nil
}

// SetReferenceValidity applies the server's verdict on the reference and
// reports whether it changed.
func (s *FormState) SetReferenceValidity(valid bool) bool {
	if s.ReferenceValid == valid {
		return false
	}
	s.ReferenceValid = valid
	return true
}

// ReferenceButtonLabel is the caption of the reference check control.
func (s *FormState) ReferenceButtonLabel() string {
	if s.ReferenceValid {
		return "Valid"
	}
	return "Check"
}

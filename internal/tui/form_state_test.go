package tui

import "testing"

func TestFormState_Validity(t *testing.T) {
	s := NewFormState()
	if s.FormValid() {
		t.Fatal("empty form should not be valid")
	}

	s.ValidateName("  Hex bolt ")
	s.ValidatePrice("0.25")
	if s.FormValid() {
		t.Fatal("form valid without a checked reference")
	}

	if !s.SetReferenceValidity(true) {
		t.Error("expected reference validity change")
	}
	if s.SetReferenceValidity(true) {
		t.Error("repeated verdict reported as a change")
	}
	if !s.FormValid() {
		t.Fatal("form should be valid")
	}
	if s.ReferenceButtonLabel() != "Valid" {
		t.Errorf("label = %q", s.ReferenceButtonLabel())
	}
}

func TestFormState_Price(t *testing.T) {
	cases := map[string]bool{
		"12":    true,
		"12.50": true,
		"0":     true,
		"-1":    false,
		"abc":   false,
		"":      false,
		"Inf":   false,
		"NaN":   false,
	}
	for in, want := range cases {
		s := NewFormState()
		s.ValidatePrice(in)
		if s.PriceValid != want {
			t.Errorf("ValidatePrice(%q) = %v, want %v", in, s.PriceValid, want)
		}
	}
}

func TestFormState_BlankName(t *testing.T) {
	s := NewFormState()
	s.ValidateName("   ")
	if s.NameValid {
		t.Error("blank name accepted")
	}
}

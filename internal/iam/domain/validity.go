package domain

import "time"

// Validity is a time window. A nil bound leaves that side open; both nil
// means always valid. Bounds are inclusive.
type Validity struct {
	From  *time.Time `json:"from,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// NewValidity builds a window, rejecting one that ends before it starts.
func NewValidity(from, until *time.Time) (Validity, error) {
	v := Validity{From: from, Until: until}
	if err := v.Check(); err != nil {
		return Validity{}, err
	}
	return v, nil
}

// Check reports ErrInvalidValidity when From is after Until.
func (v Validity) Check() error {
	if v.From != nil && v.Until != nil && v.From.After(*v.Until) {
		return ErrInvalidValidity
	}
	return nil
}

// IsOpenEnded reports whether neither bound is set.
func (v Validity) IsOpenEnded() bool { return v.From == nil && v.Until == nil }

// IsValidAt reports whether t falls inside the window.
func (v Validity) IsValidAt(t time.Time) bool {
	if v.From != nil && t.Before(*v.From) {
		return false
	}
	if v.Until != nil && t.After(*v.Until) {
		return false
	}
	return true
}

// HasEndedBy reports whether the window closed before t.
func (v Validity) HasEndedBy(t time.Time) bool {
	return v.Until != nil && v.Until.Before(t)
}

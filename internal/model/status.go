package model

import (
	"encoding/json"
	"strings"

	"academy/internal/apperr"
)

// Status is one day's attendance mark.
type Status string

const (
	Present Status = "Present"
	Absent  Status = "Absent"
)

// ParseStatus accepts either mark in any letter case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return Present, nil
	case "absent":
		return Absent, nil
	}
	return "", apperr.Invalid("unknown attendance status %q", s)
}

// Flip returns the other mark.
func (s Status) Flip() Status {
	if s == Present {
		return Absent
	}
	return Present
}

// Known reports whether s is one of the two marks.
func (s Status) Known() bool {
	return s == Present || s == Absent
}

// UnmarshalJSON normalises the letter case of known marks. Anything else is
// kept verbatim so stored records with stray marks still load; writers reject
// them through Known and readers count them as Absent.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, err := ParseStatus(raw); err == nil {
		*s = v
		return nil
	}
	*s = Status(raw)
	return nil
}

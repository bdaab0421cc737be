package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"academy/internal/apperr"
	"academy/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports failures as InvalidInput.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return apperr.Invalid("invalid %T: %s", v, strings.Join(fields, ", "))
		}
		return apperr.Invalid("invalid %T: %v", v, err)
	}
	return nil
}

// Encode turns a typed record into a store document.
func Encode(v any) (store.Document, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Invalid("encode %T: %v", v, err)
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperr.Invalid("encode %T: %v", v, err)
	}
	return doc, nil
}

// Decode fills v from a stored record and validates it. v must be a pointer.
func Decode(rec store.Record, v any) error {
	raw, err := json.Marshal(rec.Doc)
	if err != nil {
		return apperr.Invalid("document %s: %v", rec.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperr.Invalid("document %s: %v", rec.ID, err)
	}
	setID(v, rec.ID)
	if err := Validate(v); err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			e.ID = rec.ID
		}
		return err
	}
	return nil
}

// DecodeAll decodes every readable record. Records that fail to decode are
// handed to skip, when set, and left out of the result.
func DecodeAll[T any](recs []store.Record, skip func(store.Record, error)) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := Decode(rec, &v); err != nil {
			if skip != nil {
				skip(rec, err)
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

func setID(v any, id string) {
	switch r := v.(type) {
	case *Student:
		r.ID = id
	case *Teacher:
		r.ID = id
	case *Course:
		r.ID = id
	case *Batch:
		r.ID = id
	case *MonthlyAttendance:
		r.ID = id
	case *DailyAttendance:
		r.ID = id
	}
}

// Package store is the entity store adapter: generic document CRUD over named collections.
package store

import (
	"context"
	"encoding/json"
)

// Collection names.
const (
	Students   = "students"
	Teachers   = "teachers"
	Courses    = "courses"
	Batches    = "batches"
	Attendance = "attendance"
)

// Collections lists every known collection.
var Collections = []string{Students, Teachers, Courses, Batches, Attendance}

// Document is a loosely typed stored body. Typed access goes through package model.
type Document map[string]any

// Record is a document tagged with its identifier.
type Record struct {
	ID  string
	Doc Document
}

// Store is implemented by every backend.
//
// Update merges the top-level fields of doc into the stored document and fails
// with apperr.ErrNotFound when id is absent. Upsert replaces the whole document.
type Store interface {
	ListAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Update(ctx context.Context, collection, id string, doc Document) error
	Upsert(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Clone deep-copies a document through its JSON form, which is also the form
// every backend persists.
func Clone(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func merge(dst, src Document) Document {
	out := make(Document, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

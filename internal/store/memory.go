package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"academy/internal/apperr"
)

// Memory is a process-local store for development and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
	seq  map[string][]string // insertion order per collection
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]Document),
		seq:  make(map[string][]string),
	}
}

func (m *Memory) ListAll(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.data[collection]))
	for _, id := range m.seq[collection] {
		doc, err := Clone(m.data[collection][id])
		if err != nil {
			return nil, apperr.Unavailable("list "+collection, err)
		}
		out = append(out, Record{ID: id, Doc: doc})
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return Record{}, apperr.NotFound(collection, id)
	}
	cp, err := Clone(doc)
	if err != nil {
		return Record{}, apperr.Unavailable("get "+collection, err)
	}
	return Record{ID: id, Doc: cp}, nil
}

func (m *Memory) Create(_ context.Context, collection string, doc Document) (string, error) {
	cp, err := Clone(doc)
	if err != nil {
		return "", apperr.Unavailable("create "+collection, err)
	}
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, cp)
	return id, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, doc Document) error {
	cp, err := Clone(doc)
	if err != nil {
		return apperr.Unavailable("update "+collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[collection][id]
	if !ok {
		return apperr.NotFound(collection, id)
	}
	m.data[collection][id] = merge(cur, cp)
	return nil
}

func (m *Memory) Upsert(_ context.Context, collection, id string, doc Document) error {
	if id == "" {
		return apperr.Invalid("upsert into %s needs an id", collection)
	}
	cp, err := Clone(doc)
	if err != nil {
		return apperr.Unavailable("upsert "+collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, cp)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection][id]; !ok {
		return apperr.NotFound(collection, id)
	}
	delete(m.data[collection], id)
	ids := m.seq[collection]
	for j, v := range ids {
		if v == id {
			m.seq[collection] = append(ids[:j:j], ids[j+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) put(collection, id string, doc Document) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	if _, exists := m.data[collection][id]; !exists {
		m.seq[collection] = append(m.seq[collection], id)
	}
	m.data[collection][id] = doc
}

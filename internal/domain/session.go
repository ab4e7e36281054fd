package domain

import (
	"encoding/json"
	"fmt"
)

// Session is the per-visitor state bag. Values are kept as raw JSON so the
// store never needs to know the concrete types put into it.
type Session struct {
	ID string

	values   map[string]json.RawMessage
	modified bool
}

func NewSession(id string, values map[string]json.RawMessage) *Session {
	if values == nil {
		values = make(map[string]json.RawMessage)
	}

	return &Session{ID: id, values: values}
}

// Get decodes the value stored under key into dst. It reports false, leaving
// dst untouched, when the key is absent.
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("session key[%s]: %w", key, err)
	}

	return true, nil
}

// Set encodes v under key and marks the session dirty.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session key[%s]: %w", key, err)
	}

	s.values[key] = raw
	s.modified = true

	return nil
}

func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}

	delete(s.values, key)
	s.modified = true
}

func (s *Session) Values() map[string]json.RawMessage {
	return s.values
}

func (s *Session) Modified() bool {
	return s.modified
}

func (s *Session) MarkClean() {
	s.modified = false
}

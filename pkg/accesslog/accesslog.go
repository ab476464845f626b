// Package accesslog records who ran which advanced search.
package accesslog

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one served advanced search.
type Record struct {
	Time  time.Time `json:"time"`
	User  string    `json:"user"`
	Query string    `json:"query"`
}

// Line returns the record as a single JSON line without the trailing
// newline.
func (r Record) Line() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Sink stores records. Callers treat Append errors as non-fatal.
type Sink interface {
	Append(ctx context.Context, r Record) error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Append(context.Context, Record) error { return nil }

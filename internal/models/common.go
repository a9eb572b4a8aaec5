package models

import (
	"time"

	"github.com/google/uuid"
)

// DateRange is a closed interval [Start, End]. A nil *DateRange means unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, both bounds included
func (r *DateRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// ensureID assigns a fresh identifier to records created without one
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

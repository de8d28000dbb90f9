// Package store archives the architectures produced by workshop sessions.
//
// Every architecture the HTTP API extracts is saved as a [Record] so that
// the diagram can be downloaded again later without another model call.
// Three backends implement [Store]:
//   - [MemoryStore]: process-local, for development and tests
//   - [FileStore]: one JSON file per record, for single-host deployments
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	rec, err := store.NewRecord(architecture)
//	if err != nil {
//	    return err
//	}
//	if err := s.Save(ctx, rec); err != nil {
//	    return err
//	}
//
//	rec, err = s.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // unknown id
//	}
package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Record is one archived architecture.
type Record struct {
	ID           string             `json:"id"`
	ClientName   string             `json:"client_name"`
	WorkshopDate string             `json:"workshop_date,omitempty"`
	Digest       string             `json:"digest"`
	Architecture *arch.Architecture `json:"architecture"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Store is the interface for archive backends.
type Store interface {
	// Save stores a record. The record's ID must be set.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// NewRecord wraps a validated architecture in a record with a fresh id.
func NewRecord(a *arch.Architecture) (*Record, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	digest, err := a.Digest()
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:           uuid.NewString(),
		ClientName:   a.Client(),
		WorkshopDate: a.WorkshopDate,
		Digest:       digest,
		Architecture: a,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// checkID rejects ids that NewRecord could not have produced. Backends call
// it before touching storage, which also keeps file paths inside the store.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeNotFound, "architecture %q not found", id)
	}
	return nil
}

func checkRecord(rec *Record) error {
	if rec == nil || rec.Architecture == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record architecture is required")
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "record id %q is not a uuid", rec.ID)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "architecture %q not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// sortNewest orders records by creation time, newest first, breaking ties by id.
func sortNewest(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

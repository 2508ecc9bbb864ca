// Package depara manages the DEPARA registry: the mapping from raw
// bookkeeping account codes to canonical statement classifications.
package depara

import (
	"context"
	"errors"
	"time"
)

// Status is the reconciliation state of a registry entry.
type Status string

const (
	// StatusOK marks an entry whose classification was confirmed by a user
	// or loaded from the canonical seed mapping.
	StatusOK Status = "OK"
	// StatusPending marks an account seen in an import but not yet classified.
	StatusPending Status = "Pendente"
)

var (
	// ErrNotFound indicates the account code has no registry entry.
	ErrNotFound = errors.New("depara: account not found")
	// ErrValidation indicates a malformed registry operation.
	ErrValidation = errors.New("depara: validation failed")
)

// Entry is one row of the DEPARA registry. Entries are created on first
// sight of an account code and never deleted.
type Entry struct {
	AccountCode    string    `json:"codigo_conta"`
	AccountTitle   string    `json:"titulo_original"`
	Classification string    `json:"classificacao"`
	Group          string    `json:"grupo_df"`
	Status         Status    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Filter narrows List results. Predicates are conjunctive. Search matches
// case- and accent-insensitively across code, title and classification.
type Filter struct {
	Status *Status
	Group  *string
	Search string
}

// Store is the registry capability set. Implementations must guarantee
// atomic per-entry updates: concurrent Confirm calls for the same account
// code serialize, and readers never observe a torn entry.
type Store interface {
	Lookup(ctx context.Context, accountCode string) (*Entry, error)
	UpsertUnseen(ctx context.Context, accountCode, accountTitle string) (*Entry, error)
	Confirm(ctx context.Context, accountCode, classification, group string) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	// Version is a monotonic counter bumped on every mutation. Derived
	// statement caches key on it.
	Version(ctx context.Context) (int64, error)
}

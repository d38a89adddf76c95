// Package ats defines the hosted applicant-tracking vendors the engine can
// probe and sync. Each vendor lives in its own subpackage.
package ats

import (
	"context"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/ingest"
)

// ErrNotFound means the vendor has no board for the token.
var ErrNotFound = eris.New("ats board not found")

type Vendor interface {
	Source() string
	// ListJobs returns every open posting on the board. A missing board is
	// ErrNotFound; an existing empty board is a nil slice and nil error.
	ListJobs(ctx context.Context, token string) ([]ingest.Payload, error)
	// BoardName returns the vendor's display name for the board, or "" if
	// the vendor exposes none.
	BoardName(ctx context.Context, token string) (string, error)
}

// Registry holds the configured vendors in probe order.
type Registry struct {
	order []Vendor
	bySrc map[string]Vendor
}

func NewRegistry(vendors ...Vendor) *Registry {
	r := &Registry{bySrc: make(map[string]Vendor, len(vendors))}
	for _, v := range vendors {
		if _, dup := r.bySrc[v.Source()]; dup {
			continue
		}
		r.order = append(r.order, v)
		r.bySrc[v.Source()] = v
	}
	return r
}

func (r *Registry) ForSource(source string) (Vendor, bool) {
	v, ok := r.bySrc[source]
	return v, ok
}

func (r *Registry) All() []Vendor {
	out := make([]Vendor, len(r.order))
	copy(out, r.order)
	return out
}

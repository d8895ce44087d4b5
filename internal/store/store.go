// Package store persists call records keyed by call_id. The interface is
// deliberately narrow: point get, insert-once put, and a paginated scan that
// aggregation drains in full. No isolation guarantee is made between a scan
// and a concurrent write; a record written mid-scan may or may not be seen.
package store

import (
	"context"
	"errors"

	"call-audit-go/internal/types"
)

// ErrNotFound distinguishes an unknown call_id from an internal error.
var ErrNotFound = errors.New("store: call not found")

// DefaultScanLimit is the page size used when callers pass 0.
const DefaultScanLimit = 100

type Store interface {
	// Put inserts a record exactly once; a call_id is never overwritten.
	Put(ctx context.Context, rec types.CallRecord) error
	// Get returns the record for callID, or ErrNotFound.
	Get(ctx context.Context, callID string) (types.CallRecord, error)
	// Scan returns up to limit records starting after the continuation
	// token, plus the token for the next page. An empty returned token
	// means the scan is complete.
	Scan(ctx context.Context, token string, limit int) ([]types.CallRecord, string, error)
}

// ScanAll drains pagination until the store reports no further pages.
func ScanAll(ctx context.Context, s Store) ([]types.CallRecord, error) {
	var all []types.CallRecord
	token := ""
	for {
		page, next, err := s.Scan(ctx, token, DefaultScanLimit)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}

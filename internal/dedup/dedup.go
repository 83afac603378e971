// Package dedup fingerprints page content and registers records with a store
// only when their fingerprint has not been seen before.
package dedup

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/dataminer/internal/model"
)

// ErrDuplicateContent is returned by a Store when a record with the same
// fingerprint already exists.
var ErrDuplicateContent = errors.New("duplicate content")

// Store is the persistence contract the Deduplicator relies on.
// PutPageRecord must check and reserve the fingerprint atomically and
// return an error wrapping ErrDuplicateContent when it is already taken.
type Store interface {
	PutPageRecord(ctx context.Context, record *model.PageRecord) error
	ExistsFingerprint(ctx context.Context, fingerprint string) (bool, error)
}

// Fingerprint returns the hex SHA3-256 digest of content.
func Fingerprint(content string) string {
	sum := sha3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Deduplicator stores page records at most once per fingerprint.
// It holds no state of its own, so it is safe for concurrent use whenever
// the Store is.
type Deduplicator struct {
	store Store
}

// New creates a Deduplicator backed by store.
func New(store Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// RegisterIfNew stamps record with its fingerprint when missing and stores
// it. It returns false with a nil error when the content was already stored.
func (d *Deduplicator) RegisterIfNew(ctx context.Context, record *model.PageRecord) (bool, error) {
	if record.Fingerprint == "" {
		record.Fingerprint = Fingerprint(record.Content)
	}

	err := d.store.PutPageRecord(ctx, record)
	if errors.Is(err, ErrDuplicateContent) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to store page record: %w", err)
	}
	return true, nil
}

// Seen reports whether a record with fingerprint is already stored.
func (d *Deduplicator) Seen(ctx context.Context, fingerprint string) (bool, error) {
	return d.store.ExistsFingerprint(ctx, fingerprint)
}

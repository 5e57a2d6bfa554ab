package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/bitdex/blobstore"
)

// ErrNoCurrent is returned by LoadCurrent when no snapshot has been published.
var ErrNoCurrent = errors.New("snapshot: no current snapshot")

// Save encodes src, stores it under name and then points CURRENT at it.
// Readers never observe a CURRENT that names a missing blob.
func Save(ctx context.Context, store blobstore.Store, name string, src Source, optFns ...Option) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := Encode(src, optFns...)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("snapshot: put %q: %w", name, err)
	}
	if err := store.Put(ctx, blobstore.CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("snapshot: commit %q: %w", name, err)
	}
	return nil
}

// Load reads and decodes the snapshot stored under name.
func Load(ctx context.Context, store blobstore.Store, name string) (*Snapshot, error) {
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: get %q: %w", name, err)
	}
	return Decode(data)
}

// LoadCurrent loads the snapshot CURRENT points at.
func LoadCurrent(ctx context.Context, store blobstore.Store) (*Snapshot, error) {
	data, err := store.Get(ctx, blobstore.CurrentName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrNoCurrent
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: get %s: %w", blobstore.CurrentName, err)
	}

	name := strings.TrimSpace(string(data))
	if name == "" {
		return nil, ErrNoCurrent
	}
	return Load(ctx, store, name)
}

func validateName(name string) error {
	if name == "" || name == blobstore.CurrentName {
		return fmt.Errorf("snapshot: invalid name %q", name)
	}
	return nil
}

// Package identity maintains the cross-pass identity map from legacy integer
// primary keys to the surrogate IDs minted for the target schema. The map is
// the only state shared between process invocations; it is loaded once at
// pass start and persisted once at pass end.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shoplink/legacymigrate/pkg/apperrors"
)

// Kind tags one logical legacy table or relationship being migrated. It
// selects both the identity sub-registry and the row projector that apply.
type Kind string

const (
	KindBank         Kind = "bank"
	KindUser         Kind = "user"
	KindMerchant     Kind = "merchant"
	KindShop         Kind = "shop"
	KindGood         Kind = "good"
	KindBuyerAccount Kind = "buyer_account"
	KindTask         Kind = "task"
	KindOrder        Kind = "order"
	KindMessage      Kind = "message"
)

// Registry maps (kind, legacy integer ID) to the surrogate ID it was assigned.
// Entries are immutable once written; re-registering the same pair with a
// different surrogate is a conflict, and the first mapping wins.
type Registry struct {
	kinds map[Kind]map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[Kind]map[string]string)}
}

// Resolve looks up the surrogate ID registered for a legacy ID.
func (r *Registry) Resolve(kind Kind, legacyID int64) (string, bool) {
	sub, ok := r.kinds[kind]
	if !ok {
		return "", false
	}
	surrogate, ok := sub[strconv.FormatInt(legacyID, 10)]
	return surrogate, ok
}

// Register records the surrogate assigned to a legacy ID. Registering the
// same pair twice with the same surrogate is a no-op; with a different
// surrogate it returns apperrors.ErrIdentityConflict and keeps the first
// mapping.
func (r *Registry) Register(kind Kind, legacyID int64, surrogate string) error {
	sub, ok := r.kinds[kind]
	if !ok {
		sub = make(map[string]string)
		r.kinds[kind] = sub
	}

	key := strconv.FormatInt(legacyID, 10)
	if existing, ok := sub[key]; ok {
		if existing == surrogate {
			return nil
		}
		return fmt.Errorf("%s %d maps to %s: %w", kind, legacyID, existing, apperrors.ErrIdentityConflict)
	}

	sub[key] = surrogate
	return nil
}

// Count returns the number of registered entries for a kind.
func (r *Registry) Count(kind Kind) int {
	return len(r.kinds[kind])
}

// Size returns the total number of registered entries across all kinds.
func (r *Registry) Size() int {
	total := 0
	for _, sub := range r.kinds {
		total += len(sub)
	}
	return total
}

// Kinds returns the kinds that have at least one entry, sorted.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.kinds))
	for k, sub := range r.kinds {
		if len(sub) > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Load reads a persisted identity map document. A missing file is not an
// error: a fresh migration starts with an empty map.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity map: %w", err)
	}

	var kinds map[Kind]map[string]string
	if err := json.Unmarshal(data, &kinds); err != nil {
		return nil, fmt.Errorf("failed to parse identity map %s: %w", path, err)
	}
	if kinds == nil {
		kinds = make(map[Kind]map[string]string)
	}
	return &Registry{kinds: kinds}, nil
}

// Save persists the registry as a human-inspectable JSON document. The write
// is atomic: a temp file in the same directory is renamed over the target, so
// an interrupted save never truncates the previous map.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r.kinds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity map: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".identity-map-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp identity map: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write identity map: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close identity map: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace identity map: %w", err)
	}
	return nil
}

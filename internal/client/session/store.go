package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

// StateStore persists the session snapshot between runs.
// Load returns (nil, nil) when nothing was saved yet.
type StateStore interface {
	Load(ctx context.Context) (*models.State, error)
	Save(ctx context.Context, s models.State) error
}

// persisted is the stored envelope. The version lets a later layout migrate
// old entries.
type persisted struct {
	State   models.State `json:"state"`
	Version int          `json:"version"`
}

const persistedVersion = 0

// MetadataStore keeps the snapshot under one metadata key.
type MetadataStore struct {
	repo metadata.Repository
	key  string
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo, key: common.PersistedStateKey}
}

// Load returns the saved snapshot. An entry that cannot be decoded or was
// written by a newer layout is dropped, so the next start begins clean.
func (s *MetadataStore) Load(ctx context.Context) (*models.State, error) {
	b, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	var p persisted
	err = json.Unmarshal(b, &p)
	if err == nil && p.Version > persistedVersion {
		err = fmt.Errorf("unsupported version %d", p.Version)
	}
	if err != nil {
		if derr := s.repo.Delete(ctx, s.key); derr != nil {
			return nil, fmt.Errorf("decode %s: %w (discard: %v)", s.key, err, derr)
		}
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return &p.State, nil
}

func (s *MetadataStore) Save(ctx context.Context, st models.State) error {
	b, err := json.Marshal(persisted{State: st, Version: persistedVersion})
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	return s.repo.Set(ctx, s.key, b)
}

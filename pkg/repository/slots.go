package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/umputun/wouldreads/pkg/domain"
)

// Slots gives typed access to the persisted state slots on top of a Store.
// Missing slots resolve to their defaults: empty list, empty read state, zero time.
type Slots struct {
	store Store
}

// NewSlots makes typed slot accessors for the store
func NewSlots(store Store) *Slots {
	return &Slots{store: store}
}

// Articles loads the canonical article list
func (s *Slots) Articles(ctx context.Context) ([]domain.Article, error) {
	res := []domain.Article{}
	found, err := s.loadJSON(ctx, domain.SlotArticles, &res)
	if err != nil || !found {
		return []domain.Article{}, err
	}
	return res, nil
}

// SaveArticles replaces the canonical article list
func (s *Slots) SaveArticles(ctx context.Context, list []domain.Article) error {
	if list == nil {
		list = []domain.Article{}
	}
	return s.saveJSON(ctx, domain.SlotArticles, list)
}

// ReadState loads the set of read article ids
func (s *Slots) ReadState(ctx context.Context) (domain.ReadState, error) {
	var ids []string
	found, err := s.loadJSON(ctx, domain.SlotReadArticles, &ids)
	if err != nil || !found {
		return domain.NewReadState(), err
	}
	return domain.NewReadState(ids...), nil
}

// SaveReadState stores read ids as a sorted JSON array
func (s *Slots) SaveReadState(ctx context.Context, rs domain.ReadState) error {
	return s.saveJSON(ctx, domain.SlotReadArticles, rs.IDs())
}

// LastFetch loads the time of the last successful refresh, zero if never refreshed
func (s *Slots) LastFetch(ctx context.Context) (time.Time, error) {
	val, found, err := s.store.Load(ctx, domain.SlotLastFetch)
	if err != nil {
		return time.Time{}, fmt.Errorf("load %s: %w", domain.SlotLastFetch, err)
	}
	if !found || val == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", domain.SlotLastFetch, val, err)
	}
	return ts, nil
}

// SaveLastFetch stores the refresh time as RFC 3339 in UTC
func (s *Slots) SaveLastFetch(ctx context.Context, ts time.Time) error {
	if err := s.store.Save(ctx, domain.SlotLastFetch, ts.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save %s: %w", domain.SlotLastFetch, err)
	}
	return nil
}

func (s *Slots) loadJSON(ctx context.Context, key string, v any) (bool, error) {
	val, found, err := s.store.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || val == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Slots) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.store.Save(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

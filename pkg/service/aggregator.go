// Package service implements the aggregation orchestrator. It fans out fetch and parse per source,
// runs the merge pipeline and owns the persisted state slots.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/wouldreads/pkg/articles"
	"github.com/umputun/wouldreads/pkg/domain"
	"github.com/umputun/wouldreads/pkg/repository"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/parser.go -pkg mocks -skip-ensure -fmt goimports . Parser

var (
	// ErrAggregate reports an orchestration-level failure, persisted state is left unchanged
	ErrAggregate = errors.New("aggregation failed")
	// ErrRefreshInProgress is returned when another refresh is still running
	ErrRefreshInProgress = errors.New("refresh already in progress")
	// ErrArticleNotFound is returned by ToggleRead for an id not in the canonical list
	ErrArticleNotFound = errors.New("article not found")
)

// Fetcher retrieves the raw feed payload of a source
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]byte, error)
}

// Parser turns a raw payload into articles of the source
type Parser interface {
	Parse(src domain.Source, payload []byte) ([]domain.Article, error)
}

// Params for the aggregator
type Params struct {
	Sources      []domain.Source
	Fetcher      Fetcher
	Parser       Parser
	Store        repository.Store
	FetchTimeout time.Duration // per-source deadline
	MaxWorkers   int           // concurrent source tasks, 0 means one task per source
	MaxArticles  int           // ranked list size, 0 means articles.DefaultMaxArticles
}

// Stats of the canonical list
type Stats struct {
	articles.Stats
	LastFetch time.Time
}

// Aggregator orchestrates refresh, read toggling and shuffling over the canonical article list
type Aggregator struct {
	sources      []domain.Source
	fetcher      Fetcher
	parser       Parser
	slots        *repository.Slots
	fetchTimeout time.Duration
	maxWorkers   int
	maxArticles  int
	now          func() time.Time

	// merge pipeline, replaced in tests
	pipeline func(results [][]domain.Article) []domain.Article

	refreshMu sync.Mutex // serializes refresh runs

	mu        sync.RWMutex // guards fields below
	loaded    bool
	list      []domain.Article
	readState domain.ReadState
	lastFetch time.Time
}

// NewAggregator makes an aggregator. State is loaded lazily from the store on first use.
func NewAggregator(params Params) *Aggregator {
	if params.FetchTimeout <= 0 {
		params.FetchTimeout = 15 * time.Second
	}
	if params.MaxWorkers <= 0 {
		params.MaxWorkers = len(params.Sources)
	}
	if params.MaxArticles <= 0 {
		params.MaxArticles = articles.DefaultMaxArticles
	}
	res := &Aggregator{
		sources:      params.Sources,
		fetcher:      params.Fetcher,
		parser:       params.Parser,
		slots:        repository.NewSlots(params.Store),
		fetchTimeout: params.FetchTimeout,
		maxWorkers:   params.MaxWorkers,
		maxArticles:  params.MaxArticles,
		now:          time.Now,
		readState:    domain.NewReadState(),
		list:         []domain.Article{},
	}
	res.pipeline = res.runPipeline
	return res
}

// Load reads persisted slots into memory. Malformed slots are logged and replaced by their defaults.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// LoadIfEmpty loads the persisted state and runs Refresh if no articles are cached
func (a *Aggregator) LoadIfEmpty(ctx context.Context) ([]domain.Article, error) {
	if err := a.Load(ctx); err != nil {
		return nil, err
	}
	if list := a.Articles(); len(list) > 0 {
		lgr.Printf("[INFO] loaded %d cached articles", len(list))
		return list, nil
	}
	lgr.Printf("[INFO] no cached articles, refreshing")
	return a.Refresh(ctx)
}

// Refresh runs the full pipeline over all sources, replaces the canonical list and updates last-fetch.
// Per-source failures only reduce the result. On an aggregate failure the canonical list and read state stay unchanged.
func (a *Aggregator) Refresh(ctx context.Context) ([]domain.Article, error) {
	if !a.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer a.refreshMu.Unlock()

	a.mu.Lock()
	err := a.load(ctx)
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	started := a.now()
	results := a.collect(ctx)

	ranked, err := a.safePipeline(results)
	if err != nil {
		lgr.Printf("[ERROR] refresh failed: %v", err)
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// read state may have been toggled while sources were fetched
	merged := articles.MergeReadState(ranked, a.readState)
	if err := a.slots.SaveArticles(ctx, merged); err != nil {
		lgr.Printf("[ERROR] refresh failed to store articles: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrAggregate, err)
	}
	a.list = merged

	fetchedAt := a.now()
	a.lastFetch = fetchedAt
	if err := a.slots.SaveLastFetch(ctx, fetchedAt); err != nil {
		lgr.Printf("[WARN] failed to store last fetch time: %v", err)
	}

	lgr.Printf("[INFO] refreshed %d articles from %d sources in %v", len(merged), len(a.sources), a.now().Sub(started))
	return copyArticles(merged), nil
}

// ToggleRead flips the read state of an article and returns the updated article
func (a *Aggregator) ToggleRead(ctx context.Context, id string) (domain.Article, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(ctx); err != nil {
		return domain.Article{}, err
	}

	idx := -1
	for i := range a.list {
		if a.list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Article{}, fmt.Errorf("toggle %s: %w", id, ErrArticleNotFound)
	}

	rs := a.readState.Toggle(id)
	if err := a.slots.SaveReadState(ctx, rs); err != nil {
		return domain.Article{}, fmt.Errorf("toggle %s: %w", id, err)
	}
	a.readState = rs
	a.list = articles.MergeReadState(a.list, rs)

	lgr.Printf("[DEBUG] article %s read=%v", id, a.list[idx].IsRead)
	return a.list[idx], nil
}

// Shuffle returns a source-balanced random permutation of the list
func (a *Aggregator) Shuffle(list []domain.Article) []domain.Article {
	return articles.Shuffle(list)
}

// Articles returns the canonical list with the current read state merged in
func (a *Aggregator) Articles() []domain.Article {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return articles.MergeReadState(a.list, a.readState)
}

// LastFetch returns the time of the last successful refresh, zero if none
func (a *Aggregator) LastFetch() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastFetch
}

// Stats returns counts of the canonical list and the last fetch time
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Stats{Stats: articles.Count(articles.MergeReadState(a.list, a.readState)), LastFetch: a.lastFetch}
}

// load reads slots once, caller holds mu
func (a *Aggregator) load(ctx context.Context) error {
	if a.loaded {
		return nil
	}

	list, err := a.slots.Articles(ctx)
	if err != nil {
		if !isDecodeError(ctx, err) {
			return fmt.Errorf("load state: %w", err)
		}
		lgr.Printf("[WARN] ignoring stored articles: %v", err)
	}
	rs, err := a.slots.ReadState(ctx)
	if err != nil {
		if !isDecodeError(ctx, err) {
			return fmt.Errorf("load state: %w", err)
		}
		lgr.Printf("[WARN] ignoring stored read state: %v", err)
	}
	lastFetch, err := a.slots.LastFetch(ctx)
	if err != nil {
		if !isDecodeError(ctx, err) {
			return fmt.Errorf("load state: %w", err)
		}
		lgr.Printf("[WARN] ignoring stored last fetch: %v", err)
	}

	a.list, a.readState, a.lastFetch = list, rs, lastFetch
	a.loaded = true
	lgr.Printf("[DEBUG] state loaded, %d articles, %d read", len(list), len(rs))
	return nil
}

// collect runs one fetch+parse task per source and waits for all of them.
// Results are indexed by source position, a failed source yields nil.
func (a *Aggregator) collect(ctx context.Context) [][]domain.Article {
	results := make([][]domain.Article, len(a.sources))

	var g errgroup.Group
	g.SetLimit(a.maxWorkers)
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetchSource(ctx, src)
			return nil // source failures never fail the group
		})
	}
	_ = g.Wait()

	return results
}

// fetchSource retrieves and parses a single source, all errors are logged and isolated
func (a *Aggregator) fetchSource(ctx context.Context, src domain.Source) (res []domain.Article) {
	defer func() {
		if r := recover(); r != nil {
			lgr.Printf("[WARN] source %s panicked: %v", src.Name, r)
			res = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	payload, err := a.fetcher.Fetch(ctx, src)
	if err != nil {
		lgr.Printf("[WARN] failed to fetch %s: %v", src.Name, err)
		return nil
	}

	list, err := a.parser.Parse(src, payload)
	if err != nil {
		lgr.Printf("[WARN] failed to parse %s: %v", src.Name, err)
		return nil
	}

	lgr.Printf("[DEBUG] fetched %d articles from %s", len(list), src.Name)
	return list
}

// safePipeline runs the merge pipeline and turns a panic into ErrAggregate
func (a *Aggregator) safePipeline(results [][]domain.Article) (res []domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrAggregate, r)
		}
	}()
	return a.pipeline(results), nil
}

// runPipeline concatenates results in source order, then deduplicates and ranks
func (a *Aggregator) runPipeline(results [][]domain.Article) []domain.Article {
	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]domain.Article, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return articles.Rank(articles.Deduplicate(all), a.maxArticles)
}

// isDecodeError tells a corrupt slot value from a storage failure
func isDecodeError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &timeErr)
}

func copyArticles(list []domain.Article) []domain.Article {
	res := make([]domain.Article, len(list))
	copy(res, list)
	return res
}

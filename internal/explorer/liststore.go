package explorer

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
)

// PageSize is the fixed server-side page size.
const PageSize = 20

// PageFetcher loads listing pages and search results.
type PageFetcher interface {
	FetchPage(ctx context.Context, provenance Provenance, page int) (Page, error)
	Search(ctx context.Context, text string) ([]Entity, error)
}

// Collection is one paginated slot's current contents.
type Collection struct {
	Results []Entity
	Page    int
	Count   int
}

// TotalPages derives the page count from the item count.
func (c Collection) TotalPages() int {
	if c.Count <= 0 {
		return 0
	}
	return (c.Count + PageSize - 1) / PageSize
}

// EntityListStore holds two independently paginated collections keyed by
// provenance plus one ephemeral search-result list. Each logical slot is
// guarded by a request sequence number: only the most recent request for a
// slot may mutate it, so slow stale responses are discarded silently.
type EntityListStore struct {
	fetcher PageFetcher
	logger  *log.Logger

	mu          sync.Mutex
	collections map[Provenance]Collection
	pageSeq     map[Provenance]uint64
	searchSeq   uint64
	search      []Entity
}

// NewEntityListStore constructs a store.
func NewEntityListStore(fetcher PageFetcher, logger *log.Logger) (*EntityListStore, error) {
	if fetcher == nil {
		return nil, errors.New("explorer: nil fetcher")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &EntityListStore{
		fetcher:     fetcher,
		logger:      logger,
		collections: map[Provenance]Collection{},
		pageSeq:     map[Provenance]uint64{},
	}, nil
}

// Collection returns the current contents of a provenance slot.
func (s *EntityListStore) Collection(provenance Provenance) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[provenance]
}

// SearchResults returns the current search slot contents.
func (s *EntityListStore) SearchResults() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// LoadPage replaces a provenance slot with the requested page. A transport
// or decode failure resets the slot to empty, since the failure means the
// previously held count can no longer be trusted.
func (s *EntityListStore) LoadPage(ctx context.Context, provenance Provenance, page int) error {
	s.mu.Lock()
	s.pageSeq[provenance]++
	seq := s.pageSeq[provenance]
	s.mu.Unlock()

	result, err := s.fetcher.FetchPage(ctx, provenance, page)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.pageSeq[provenance] {
		// A newer request owns this slot now.
		return nil
	}
	if err != nil {
		s.collections[provenance] = Collection{}
		return err
	}
	s.collections[provenance] = Collection{
		Results: result.Results,
		Page:    result.Number,
		Count:   result.Count,
	}
	return nil
}

// Query replaces the search slot. Empty or whitespace-only text clears the
// results without issuing a request.
func (s *EntityListStore) Query(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	if trimmed == "" {
		s.search = nil
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	results, err := s.fetcher.Search(ctx, trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.searchSeq {
		return nil
	}
	if err != nil {
		s.search = nil
		return err
	}
	s.search = results
	return nil
}

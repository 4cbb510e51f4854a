package explorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type scriptedFetcher struct {
	mu       sync.Mutex
	pages    map[string]Page
	pageErr  error
	searches map[string][]Entity
	requests []string

	// When set, FetchPage blocks until released. Used to simulate a slow
	// in-flight request overtaken by a newer one.
	gate chan struct{}
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		pages:    map[string]Page{},
		searches: map[string][]Entity{},
	}
}

func (f *scriptedFetcher) key(provenance Provenance, page int) string {
	return fmt.Sprintf("%s/%d", provenance, page)
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, provenance Provenance, page int) (Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, f.key(provenance, page))
	gate := f.gate
	f.gate = nil
	result, ok := f.pages[f.key(provenance, page)]
	err := f.pageErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return Page{}, err
	}
	if !ok {
		return Page{}, errors.New("no scripted page")
	}
	return result, nil
}

func (f *scriptedFetcher) Search(ctx context.Context, text string) ([]Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, "search/"+text)
	return f.searches[text], nil
}

func (f *scriptedFetcher) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func entities(n int) []Entity {
	out := make([]Entity, n)
	for i := range out {
		out[i] = Entity{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("entity %d", i)}
	}
	return out
}

func TestLoadPageDerivesTotalPages(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.pages["CSV/1"] = Page{Count: 41, Number: 1, Results: entities(20)}

	store, err := NewEntityListStore(fetcher, discardLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.LoadPage(context.Background(), ProvenanceCSV, 1); err != nil {
		t.Fatalf("load page: %v", err)
	}

	col := store.Collection(ProvenanceCSV)
	if col.Count != 41 || len(col.Results) != 20 {
		t.Fatalf("collection = count %d, %d results", col.Count, len(col.Results))
	}
	if got := col.TotalPages(); got != 3 {
		t.Fatalf("TotalPages() = %d, want 3 for count 41", got)
	}
}

func TestLoadPageFailureResetsSlot(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.pages["CSV/1"] = Page{Count: 25, Number: 1, Results: entities(20)}

	store, err := NewEntityListStore(fetcher, discardLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.LoadPage(context.Background(), ProvenanceCSV, 1); err != nil {
		t.Fatalf("load page: %v", err)
	}

	fetcher.mu.Lock()
	fetcher.pageErr = errors.New("server unavailable")
	fetcher.mu.Unlock()

	if err := store.LoadPage(context.Background(), ProvenanceCSV, 2); err == nil {
		t.Fatal("expected load failure")
	}

	col := store.Collection(ProvenanceCSV)
	if col.Count != 0 || len(col.Results) != 0 || col.TotalPages() != 0 {
		t.Fatalf("failed load left stale contents: %+v", col)
	}
}

func TestLoadPageDiscardsOvertakenResponse(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.pages["CSV/1"] = Page{Count: 40, Number: 1, Results: entities(20)}
	fetcher.pages["CSV/2"] = Page{Count: 40, Number: 2, Results: entities(20)}

	store, err := NewEntityListStore(fetcher, discardLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	gate := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.gate = gate
	fetcher.mu.Unlock()

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- store.LoadPage(context.Background(), ProvenanceCSV, 1)
	}()

	// Wait for the slow request to be issued, then let a newer one win.
	for fetcher.requestCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := store.LoadPage(context.Background(), ProvenanceCSV, 2); err != nil {
		t.Fatalf("load page 2: %v", err)
	}
	close(gate)
	if err := <-slowDone; err != nil {
		t.Fatalf("overtaken load returned error: %v", err)
	}

	if col := store.Collection(ProvenanceCSV); col.Page != 2 {
		t.Fatalf("stale response overwrote slot, page = %d", col.Page)
	}
}

func TestQueryEmptyTextClearsWithoutRequest(t *testing.T) {
	fetcher := newScriptedFetcher()
	fetcher.searches["pika"] = entities(3)

	store, err := NewEntityListStore(fetcher, discardLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Query(context.Background(), "pika"); err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(store.SearchResults()) != 3 {
		t.Fatalf("search results = %d, want 3", len(store.SearchResults()))
	}

	before := fetcher.requestCount()
	if err := store.Query(context.Background(), "   "); err != nil {
		t.Fatalf("clear query: %v", err)
	}
	if fetcher.requestCount() != before {
		t.Fatal("clearing the query issued a network request")
	}
	if len(store.SearchResults()) != 0 {
		t.Fatal("clearing the query left stale results")
	}
}

func TestCollectionTotalPages(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0},
		{1, 1},
		{20, 1},
		{21, 2},
		{200, 10},
	}
	for _, tc := range cases {
		col := Collection{Count: tc.count}
		if got := col.TotalPages(); got != tc.want {
			t.Errorf("TotalPages() with count %d = %d, want %d", tc.count, got, tc.want)
		}
	}
}

package services

import (
	"context"
	"errors"
	"testing"
)

// pagedSource serves fixed pages keyed by cursor and counts fetches.
type pagedSource struct {
	pages   map[string][]int
	next    map[string]string
	fail    map[string]error
	fetches []string
}

func (p *pagedSource) fetch(ctx context.Context, cursor string) ([]int, string, error) {
	p.fetches = append(p.fetches, cursor)
	if err := p.fail[cursor]; err != nil {
		return nil, "", err
	}
	return p.pages[cursor], p.next[cursor], nil
}

func TestIterator(t *testing.T) {
	ctx := context.Background()

	t.Run("walks every page in order", func(t *testing.T) {
		src := &pagedSource{
			pages: map[string][]int{"": {1, 2}, "c2": {3}, "c3": {4, 5}},
			next:  map[string]string{"": "c2", "c2": "c3"},
		}

		got, err := NewIterator(src.fetch).Collect(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []int{1, 2, 3, 4, 5}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
		if len(src.fetches) != 3 {
			t.Errorf("expected 3 fetches, got %v", src.fetches)
		}
	})

	t.Run("fetches lazily", func(t *testing.T) {
		src := &pagedSource{
			pages: map[string][]int{"": {1, 2}, "c2": {3}},
			next:  map[string]string{"": "c2"},
		}
		it := NewIterator(src.fetch)

		if len(src.fetches) != 0 {
			t.Fatal("iterator should not fetch before Next")
		}
		it.Next(ctx)
		it.Next(ctx)
		if len(src.fetches) != 1 {
			t.Errorf("second item should come from the first page, fetches=%v", src.fetches)
		}
		it.Next(ctx)
		if it.Item() != 3 || len(src.fetches) != 2 {
			t.Errorf("expected item 3 after second fetch, got %d fetches=%v", it.Item(), src.fetches)
		}
		if it.Next(ctx) {
			t.Error("expected end of iteration")
		}
		if len(src.fetches) != 2 {
			t.Errorf("no fetch should happen once the cursor is empty, fetches=%v", src.fetches)
		}
	})

	t.Run("empty pages with a cursor are skipped", func(t *testing.T) {
		src := &pagedSource{
			pages: map[string][]int{"": {}, "c2": {7}},
			next:  map[string]string{"": "c2"},
		}
		got, err := NewIterator(src.fetch).Collect(ctx)
		if err != nil || len(got) != 1 || got[0] != 7 {
			t.Errorf("expected [7], got %v, %v", got, err)
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		src := &pagedSource{}
		it := NewIterator(src.fetch)
		if it.Next(ctx) {
			t.Error("expected no items")
		}
		if it.Err() != nil || it.Pages() != 1 {
			t.Errorf("expected one clean fetch, got err=%v pages=%d", it.Err(), it.Pages())
		}
	})

	t.Run("fetch error stops iteration", func(t *testing.T) {
		boom := errors.New("boom")
		src := &pagedSource{
			pages: map[string][]int{"": {1}},
			next:  map[string]string{"": "c2"},
			fail:  map[string]error{"c2": boom},
		}
		it := NewIterator(src.fetch)

		got, err := it.Collect(ctx)
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if len(got) != 1 {
			t.Errorf("items before the failure should be kept, got %v", got)
		}
		if it.Next(ctx) {
			t.Error("iterator should stay stopped after an error")
		}
		if len(src.fetches) != 2 {
			t.Errorf("failed page should not be retried, fetches=%v", src.fetches)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		src := &pagedSource{pages: map[string][]int{"": {1}}}
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		it := NewIterator(src.fetch)
		if it.Next(cctx) {
			t.Error("expected no items")
		}
		if !errors.Is(it.Err(), context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", it.Err())
		}
		if len(src.fetches) != 0 {
			t.Errorf("expected no fetch, got %v", src.fetches)
		}
	})

	t.Run("separate iterators do not share state", func(t *testing.T) {
		src := &pagedSource{pages: map[string][]int{"": {1, 2}}}
		a := NewIterator(src.fetch)
		b := NewIterator(src.fetch)

		a.Next(ctx)
		a.Next(ctx)
		b.Next(ctx)
		if a.Item() != 2 || b.Item() != 1 {
			t.Errorf("expected independent positions, got a=%d b=%d", a.Item(), b.Item())
		}
	})
}

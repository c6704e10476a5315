package services

import "context"

// PageFunc fetches the page at cursor. An empty cursor asks for the first page; an empty next cursor ends iteration.
type PageFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// Iterator yields the items of a paginated collection one at a time.
//
// It holds the current page and the cursor of the next one, and fetches only when the current page is exhausted.
// An Iterator is single use: call the producing method again to start over.
//
//	it := lib.Playlists("")
//	for it.Next(ctx) {
//		pl := it.Item()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	fetch   PageFunc[T]
	page    []T
	pos     int
	cursor  string
	started bool
	pages   int
	item    T
	err     error
}

// NewIterator creates an Iterator over the pages returned by fetch.
func NewIterator[T any](fetch PageFunc[T]) *Iterator[T] {
	return &Iterator[T]{fetch: fetch}
}

// Next advances to the next item, fetching another page if needed. Returns false when the collection is exhausted
// or a fetch failed; check [Iterator.Err] to tell the two apart.
func (it *Iterator[T]) Next(ctx context.Context) bool {
	for {
		if it.err != nil {
			return false
		}
		if it.pos < len(it.page) {
			it.item = it.page[it.pos]
			it.pos++
			return true
		}
		if it.started && it.cursor == "" {
			return false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}

		items, next, err := it.fetch(ctx, it.cursor)
		it.started = true
		if err != nil {
			it.err = err
			return false
		}
		it.page, it.pos, it.cursor = items, 0, next
		it.pages++
	}
}

// Item returns the current item.
func (it *Iterator[T]) Item() T {
	return it.item
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Pages returns how many pages have been fetched so far.
func (it *Iterator[T]) Pages() int {
	return it.pages
}

// Collect drains the iterator into a slice.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	var out []T
	for it.Next(ctx) {
		out = append(out, it.Item())
	}
	return out, it.Err()
}

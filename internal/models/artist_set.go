package models

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultIgnore lists sentinel artist names that never identify a real artist.
var DefaultIgnore = []string{"", "unknown", "unknown artist", "various artists", "various"}

// NormalizeArtist trims surrounding whitespace and lower-cases name.
func NormalizeArtist(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// DisplayArtist title-cases a normalized name for log output.
func DisplayArtist(name string) string {
	return cases.Title(language.Und).String(name)
}

// IgnoreList is a set of normalized names excluded from an [ArtistSet].
type IgnoreList map[string]struct{}

// NewIgnoreList normalizes names into an IgnoreList.
func NewIgnoreList(names ...string) IgnoreList {
	l := make(IgnoreList, len(names))
	for _, n := range names {
		l[NormalizeArtist(n)] = struct{}{}
	}
	return l
}

// Contains reports whether name, once normalized, is ignored.
func (l IgnoreList) Contains(name string) bool {
	_, ok := l[NormalizeArtist(name)]
	return ok
}

// ArtistSet is a deduplicated set of normalized artist names.
//
// Names are normalized before insertion and ignored names are dropped, so the set never holds two spellings of
// the same artist or a sentinel such as "various artists".
type ArtistSet struct {
	names  map[string]struct{}
	ignore IgnoreList
}

// NewArtistSet creates an empty set that drops names in ignore. A nil ignore list uses [DefaultIgnore].
func NewArtistSet(ignore IgnoreList) *ArtistSet {
	if ignore == nil {
		ignore = NewIgnoreList(DefaultIgnore...)
	}
	return &ArtistSet{names: make(map[string]struct{}), ignore: ignore}
}

// Add normalizes each name and inserts it unless it is blank or ignored. Returns how many names were new.
func (s *ArtistSet) Add(names ...string) int {
	added := 0
	for _, name := range names {
		n := NormalizeArtist(name)
		if n == "" {
			continue
		}
		if _, skip := s.ignore[n]; skip {
			continue
		}
		if _, ok := s.names[n]; ok {
			continue
		}
		s.names[n] = struct{}{}
		added++
	}
	return added
}

// Union adds every name of other. Names ignored by s are dropped even if other accepted them.
func (s *ArtistSet) Union(other *ArtistSet) int {
	if other == nil {
		return 0
	}
	added := 0
	for n := range other.names {
		added += s.Add(n)
	}
	return added
}

// Contains reports whether name, once normalized, is in the set.
func (s *ArtistSet) Contains(name string) bool {
	_, ok := s.names[NormalizeArtist(name)]
	return ok
}

// Len returns the number of distinct names.
func (s *ArtistSet) Len() int {
	return len(s.names)
}

// Sorted returns the names in lexical order.
func (s *ArtistSet) Sorted() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

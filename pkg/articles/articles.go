// Package articles implements the processing steps applied to an aggregated article list:
// deduplication, recency ranking, read-state merging and the source-balanced display shuffle.
// All functions are pure, they never modify the input slice.
package articles

import (
	"sort"

	"github.com/umputun/wouldreads/pkg/domain"
)

// DefaultMaxArticles is the max size of a ranked list
const DefaultMaxArticles = 50

// Deduplicate removes articles matching any earlier article by normalized title or by the
// same non-empty link. The first occurrence wins regardless of recency, so the input order
// matters. Dropped articles still count as earlier ones for the matching.
func Deduplicate(list []domain.Article) []domain.Article {
	res := make([]domain.Article, 0, len(list))
	titles := make(map[string]struct{}, len(list))
	links := make(map[string]struct{}, len(list))

	for _, a := range list {
		title := domain.NormalizeTitle(a.Title)
		_, dupTitle := titles[title]
		_, dupLink := links[a.Link]
		dup := dupTitle || (a.Link != "" && dupLink)

		titles[title] = struct{}{}
		if a.Link != "" {
			links[a.Link] = struct{}{}
		}
		if !dup {
			res = append(res, a)
		}
	}
	return res
}

// Rank sorts articles newest first and keeps at most limit of them.
// Articles with equal timestamps keep their relative order. Non-positive limit means DefaultMaxArticles.
func Rank(list []domain.Article, limit int) []domain.Article {
	if limit <= 0 {
		limit = DefaultMaxArticles
	}

	res := make([]domain.Article, len(list))
	copy(res, list)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].PublishedAt.After(res[j].PublishedAt)
	})

	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

// MergeReadState returns a copy of the list with IsRead set from the read state
func MergeReadState(list []domain.Article, rs domain.ReadState) []domain.Article {
	res := make([]domain.Article, len(list))
	for i, a := range list {
		a.IsRead = rs.Has(a.ID)
		res[i] = a
	}
	return res
}

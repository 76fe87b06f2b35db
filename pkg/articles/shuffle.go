package articles

import (
	"github.com/samber/lo"

	"github.com/umputun/wouldreads/pkg/domain"
)

// guaranteedPerSource is the number of articles of each source picked before mixing
const guaranteedPerSource = 2

// Shuffle returns a random permutation of the list in which every source keeps at least
// min(2, its article count) articles. It picks up to two random articles per source first,
// shuffles the rest, then mixes everything with one more full shuffle. Nothing is dropped
// or duplicated, the result has exactly the input length.
func Shuffle(list []domain.Article) []domain.Article {
	if len(list) == 0 {
		return []domain.Article{}
	}

	sources := lo.Uniq(lo.Map(list, func(a domain.Article, _ int) string { return a.Source }))
	groups := lo.GroupBy(lo.Range(len(list)), func(i int) string { return list[i].Source })

	picked := make(map[int]struct{}, guaranteedPerSource*len(sources))
	order := make([]int, 0, len(list))
	for _, src := range sources {
		group := groups[src]
		for _, idx := range lo.Samples(group, min(guaranteedPerSource, len(group))) {
			picked[idx] = struct{}{}
			order = append(order, idx)
		}
	}

	remainder := lo.Filter(lo.Range(len(list)), func(i, _ int) bool {
		_, ok := picked[i]
		return !ok
	})
	order = append(order, lo.Shuffle(remainder)...)
	order = lo.Shuffle(order)

	res := make([]domain.Article, len(order))
	for i, idx := range order {
		res[i] = list[idx]
	}
	return res
}

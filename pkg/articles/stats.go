package articles

import (
	"fmt"
	"time"

	"github.com/umputun/wouldreads/pkg/domain"
)

// Stats is a summary of an article list
type Stats struct {
	Total int `json:"total"`
	Read  int `json:"read"`
}

// Count returns the totals of the list
func Count(list []domain.Article) Stats {
	res := Stats{Total: len(list)}
	for _, a := range list {
		if a.IsRead {
			res.Read++
		}
	}
	return res
}

// TimeAgo formats the age of t relative to now the way the article list shows it
func TimeAgo(t, now time.Time) string {
	hours := int(now.Sub(t).Hours())
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	switch {
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

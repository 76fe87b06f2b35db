package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article represents a single normalized story collected from a source
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // plain text, bounded length
	Link        string    `json:"link"`
	Source      string    `json:"source"` // name of the originating source
	PublishedAt time.Time `json:"published_at"`
	IsRead      bool      `json:"is_read"`
}

// ArticleID derives a stable identifier for a story. The same source and link always
// produce the same id, so read state survives a re-fetch. Items without a link fall
// back to the normalized title.
func ArticleID(source, link, title string) string {
	key := strings.TrimSpace(link)
	if key == "" {
		key = NormalizeTitle(title)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"\n"+key)).String()
}

// NormalizeTitle returns the form of a title used for equivalence checks
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

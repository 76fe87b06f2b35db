package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/umputun/wouldreads/pkg/domain"
)

// Generator creates RSS feeds from aggregated articles
type Generator struct {
	baseURL string
	title   string
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, title string) *Generator {
	if title == "" {
		title = "wouldreads"
	}
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		title:   title,
	}
}

// GenerateRSS creates an RSS 2.0 feed from articles, optionally leaving out read ones
func (g *Generator) GenerateRSS(articles []domain.Article, unreadOnly bool) (string, error) {
	rssItems := make([]*RSSItem, 0, len(articles))
	for _, a := range articles {
		if unreadOnly && a.IsRead {
			continue
		}
		rssItems = append(rssItems, &RSSItem{
			Title:       a.Title,
			Link:        a.Link,
			GUID:        a.ID,
			Description: a.Description,
			Source:      a.Source,
			PubDate:     a.PublishedAt.Format(time.RFC1123Z),
		})
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         g.title,
			Link:          g.baseURL + "/",
			Description:   fmt.Sprintf("%s - aggregated articles", g.title),
			AtomLink:      &AtomLink{Href: g.baseURL + "/rss", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

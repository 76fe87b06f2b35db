package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/wouldreads/pkg/domain"
)

func TestGenerator_GenerateRSS(t *testing.T) {
	generator := NewGenerator("https://example.com/", "")

	pubTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	articles := []domain.Article{
		{ID: "id-1", Title: "Test Article 1", Link: "https://example.com/article1", Description: "first",
			Source: "Hacker News", PublishedAt: pubTime},
		{ID: "id-2", Title: "Test Article 2 & more", Link: "https://example.com/article2", Description: "second",
			Source: "Semafor", PublishedAt: pubTime.Add(-time.Hour), IsRead: true},
	}

	t.Run("all articles", func(t *testing.T) {
		rss, err := generator.GenerateRSS(articles, false)
		require.NoError(t, err)

		assert.Contains(t, rss, `<?xml version="1.0" encoding="UTF-8"?>`)
		assert.Contains(t, rss, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
		assert.Contains(t, rss, `<title>wouldreads</title>`)
		assert.Contains(t, rss, `<link>https://example.com/</link>`)
		assert.Contains(t, rss, `href="https://example.com/rss"`)
		assert.Contains(t, rss, `<title>Test Article 1</title>`)
		assert.Contains(t, rss, `<title>Test Article 2 &amp; more</title>`)
		assert.Contains(t, rss, `<guid>id-1</guid>`)
		assert.Contains(t, rss, `<source>Hacker News</source>`)
		assert.Contains(t, rss, `<pubDate>Mon, 01 Jan 2024 12:00:00 +0000</pubDate>`)
	})

	t.Run("unread only", func(t *testing.T) {
		rss, err := generator.GenerateRSS(articles, true)
		require.NoError(t, err)
		assert.Contains(t, rss, `<title>Test Article 1</title>`)
		assert.NotContains(t, rss, `Test Article 2`)
	})

	t.Run("generated feed parses back", func(t *testing.T) {
		rss, err := generator.GenerateRSS(articles, false)
		require.NoError(t, err)

		parsed, err := NewParser(0).Parse(domain.Source{Name: "self"}, []byte(rss))
		require.NoError(t, err)
		require.Len(t, parsed, 2)
		assert.Equal(t, "Test Article 2 & more", parsed[1].Title)
		assert.Equal(t, "https://example.com/article2", parsed[1].Link)
		assert.True(t, parsed[0].PublishedAt.Equal(pubTime))
	})

	t.Run("empty list", func(t *testing.T) {
		rss, err := generator.GenerateRSS(nil, false)
		require.NoError(t, err)
		assert.Contains(t, rss, `<channel>`)
		assert.NotContains(t, rss, `<item>`)
	})
}

package feed

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"

	"github.com/umputun/wouldreads/pkg/domain"
)

const (
	// DefaultDescriptionLimit is the max number of characters kept in a description
	DefaultDescriptionLimit = 200

	untitled      = "Untitled"
	noDescription = "No description available"
	ellipsis      = "..."
)

// ErrUnsupportedFormat is returned for payloads which are not RSS documents
var ErrUnsupportedFormat = errors.New("unsupported feed format")

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	entityRe = regexp.MustCompile(`&[^;]+;`)

	itemRe = regexp.MustCompile(`(?s)<item[\s>].*?</item>`)
	rootRe = regexp.MustCompile(`<(rss|rdf:RDF)\b[^>]*>`)
)

// Parser converts raw RSS payloads into articles
type Parser struct {
	descLimit int
	now       func() time.Time
}

// NewParser creates a parser keeping at most descLimit characters of a description.
// Non-positive descLimit means DefaultDescriptionLimit.
func NewParser(descLimit int) *Parser {
	if descLimit <= 0 {
		descLimit = DefaultDescriptionLimit
	}
	return &Parser{descLimit: descLimit, now: time.Now}
}

// Parse decodes the payload of a single source and returns its articles in feed order.
// A broken item is skipped, the rest are still returned. An error means nothing usable was found.
func (p *Parser) Parse(src domain.Source, payload []byte) ([]domain.Article, error) {
	if ft := gofeed.DetectFeedType(bytes.NewReader(payload)); ft != gofeed.FeedTypeRSS {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, feedTypeName(ft))
	}

	retrieved := p.now()
	items, err := decodeRSS(payload)
	if err != nil {
		items = decodeItems(src, payload)
		if len(items) == 0 {
			return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
		}
		lgr.Printf("[WARN] feed %s is broken, kept %d items: %v", src.Name, len(items), err)
	}

	res := make([]domain.Article, 0, len(items))
	for _, item := range items {
		res = append(res, p.toArticle(src, item, retrieved))
	}
	return res, nil
}

// decodeRSS runs the rss parser over a whole document, a panic inside it is reported as an error
func decodeRSS(payload []byte) (items []*rss.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("rss parser panic: %v", r)
		}
	}()

	feed, err := (&rss.Parser{}).Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	return feed.Items, nil
}

// decodeItems parses every complete item of a broken document on its own,
// wrapped into the original root element so namespace declarations still apply
func decodeItems(src domain.Source, payload []byte) []*rss.Item {
	open, closing := []byte(`<rss version="2.0">`), []byte("</rss>")
	if m := rootRe.FindSubmatch(payload); m != nil {
		open, closing = m[0], []byte("</"+string(m[1])+">")
	}

	res := []*rss.Item{}
	for i, chunk := range itemRe.FindAll(payload, -1) {
		doc := make([]byte, 0, len(open)+len(chunk)+len(closing)+32)
		doc = append(doc, open...)
		doc = append(doc, "<channel>"...)
		doc = append(doc, chunk...)
		doc = append(doc, "</channel>"...)
		doc = append(doc, closing...)

		items, err := decodeRSS(doc)
		if err != nil || len(items) == 0 {
			lgr.Printf("[DEBUG] skip item #%d of %s: %v", i, src.Name, err)
			continue
		}
		res = append(res, items...)
	}
	return res
}

// toArticle applies the field fallback chains to a decoded item
func (p *Parser) toArticle(src domain.Source, item *rss.Item, retrieved time.Time) domain.Article {
	title := firstNonEmpty(item.Title, untitled)
	link := firstNonEmpty(firstLink(item), guidValue(item))
	desc := firstNonEmpty(item.Description, item.Content, noDescription)

	return domain.Article{
		ID:          domain.ArticleID(src.Name, link, title),
		Title:       title,
		Description: CleanText(desc, p.descLimit),
		Link:        link,
		Source:      src.Name,
		PublishedAt: parseDate(retrieved, item.PubDate, published(item)),
	}
}

// firstLink returns the first plain <link> of an item, namespaced ones like atom:link are extensions
func firstLink(item *rss.Item) string {
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return item.Link
}

func guidValue(item *rss.Item) string {
	if item.GUID == nil {
		return ""
	}
	return item.GUID.Value
}

// published returns a non-standard <published> value, plain or atom:published
func published(item *rss.Item) string {
	if v := item.Custom["published"]; v != "" {
		return v
	}
	if exts := item.Extensions["atom"]["published"]; len(exts) > 0 {
		return exts[0].Value
	}
	return ""
}

// CleanText strips markup tags, replaces entity references with a space, trims and
// truncates the result to limit characters, appending an ellipsis if anything was cut
func CleanText(s string, limit int) string {
	s = tagRe.ReplaceAllString(s, "")
	s = entityRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\u00a0", " ") // decoded &nbsp;
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + ellipsis
	}
	return s
}

// parseDate returns the first parsable date, or fallback if none of them can be used
func parseDate(fallback time.Time, values ...string) time.Time {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		t, err := dateparse.ParseAny(v)
		if err != nil {
			lgr.Printf("[DEBUG] can't parse date %q: %v", v, err)
			continue
		}
		return t
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func feedTypeName(ft gofeed.FeedType) string {
	switch ft {
	case gofeed.FeedTypeAtom:
		return "atom"
	case gofeed.FeedTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

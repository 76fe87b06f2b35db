package domain

// Source represents a configured feed origin
type Source struct {
	Name    string `yaml:"name" json:"name" jsonschema:"required,minLength=1,description=Display and grouping name of the source"`
	URL     string `yaml:"url" json:"url,omitempty" jsonschema:"description=Home page of the source"`
	FeedURL string `yaml:"feed_url" json:"feed_url" jsonschema:"required,minLength=1,description=RSS feed URL"`
}

// DefaultSources is the built-in source list used when configuration provides none
var DefaultSources = []Source{
	{Name: "The New Yorker", URL: "https://www.newyorker.com/", FeedURL: "https://www.newyorker.com/feed/rss"},
	{Name: "Stratechery", URL: "https://stratechery.com/", FeedURL: "https://stratechery.com/feed/"},
	{Name: "Sherwood News", URL: "https://sherwood.news/", FeedURL: "https://sherwood.news/rss/"},
	{Name: "The New York Times", URL: "https://www.nytimes.com/", FeedURL: "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml"},
	{Name: "Hacker News", URL: "https://news.ycombinator.com/", FeedURL: "https://hnrss.org/frontpage"},
	{Name: "Semafor", URL: "https://www.semafor.com/", FeedURL: "https://www.semafor.com/rss"},
}

package domain

// Names of the persisted state slots
const (
	SlotArticles     = "articles"      // canonical article list, JSON array, default empty
	SlotReadArticles = "read-articles" // read article ids, JSON array, default empty
	SlotLastFetch    = "last-fetch"    // RFC 3339 time of the last successful refresh, default empty
)

package server

import (
	"net/http"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wouldreads/pkg/feed"
)

// rssHandler serves the canonical list as RSS
func (s *Server) rssHandler(w http.ResponseWriter, _ *http.Request) {
	s.renderRSS(w, false)
}

// rssUnreadHandler serves unread articles only
func (s *Server) rssUnreadHandler(w http.ResponseWriter, _ *http.Request) {
	s.renderRSS(w, true)
}

func (s *Server) renderRSS(w http.ResponseWriter, unreadOnly bool) {
	generator := feed.NewGenerator(s.config.GetFullConfig().Server.BaseURL, "")

	rss, err := generator.GenerateRSS(s.aggregator.Articles(), unreadOnly)
	if err != nil {
		lgr.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	// set content type and write RSS
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		lgr.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}

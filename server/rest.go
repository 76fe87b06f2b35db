package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/wouldreads/pkg/articles"
	"github.com/umputun/wouldreads/pkg/domain"
	"github.com/umputun/wouldreads/pkg/service"
)

// articleView is an article with its relative publication time
type articleView struct {
	domain.Article
	TimeAgo string `json:"time_ago"`
}

// articlesResponse is returned by list and refresh endpoints
type articlesResponse struct {
	Articles  []articleView `json:"articles"`
	Count     int           `json:"count"`
	Read      int           `json:"read"`
	LastFetch *time.Time    `json:"last_fetch,omitempty"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.aggregator.Stats()
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    s.now().UTC(),
		"total":   stats.Total,
		"read":    stats.Read,
	}
	if !stats.LastFetch.IsZero() {
		status["last_fetch"] = stats.LastFetch.UTC()
		status["last_fetch_ago"] = articles.TimeAgo(stats.LastFetch, s.now())
	}
	renderJSON(w, r, http.StatusOK, status)
}

// articlesHandler returns the canonical list, ?shuffle=true returns a source-balanced random order
func (s *Server) articlesHandler(w http.ResponseWriter, r *http.Request) {
	list := s.aggregator.Articles()
	if r.URL.Query().Get("shuffle") == "true" {
		list = s.aggregator.Shuffle(list)
	}
	renderJSON(w, r, http.StatusOK, s.makeResponse(list))
}

// refreshHandler runs a full refresh, previous data is kept on failure
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.aggregator.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRefreshInProgress) {
			renderError(w, r, err, http.StatusConflict)
			return
		}
		lgr.Printf("[ERROR] refresh failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, s.makeResponse(list))
}

// toggleReadHandler flips read state of an article
func (s *Server) toggleReadHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		renderError(w, r, errors.New("article id is required"), http.StatusBadRequest)
		return
	}

	article, err := s.aggregator.ToggleRead(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			renderError(w, r, err, http.StatusNotFound)
			return
		}
		lgr.Printf("[ERROR] failed to toggle read state: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, s.makeView(article))
}

func (s *Server) makeResponse(list []domain.Article) articlesResponse {
	now := s.now()
	views := make([]articleView, len(list))
	for i, a := range list {
		views[i] = articleView{Article: a, TimeAgo: articles.TimeAgo(a.PublishedAt, now)}
	}
	stats := articles.Count(list)
	res := articlesResponse{Articles: views, Count: stats.Total, Read: stats.Read}
	if lf := s.aggregator.Stats().LastFetch; !lf.IsZero() {
		res.LastFetch = &lf
	}
	return res
}

func (s *Server) makeView(a domain.Article) articleView {
	return articleView{Article: a, TimeAgo: articles.TimeAgo(a.PublishedAt, s.now())}
}

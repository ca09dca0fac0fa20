package club

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/remote"
)

type newsStore struct {
	*store
	links []NewsLink
}

// NewNewsStore creates a new NewsStore.
func NewNewsStore(client remote.Client, m metrics.Metrics) NewsStore {
	return &newsStore{store: newStore(remote.TableNews, client, m)}
}

// Fetch reads the active links. A backend without the news table yields an
// empty list rather than an error.
func (s *newsStore) Fetch(ctx context.Context) ([]NewsLink, error) {
	rows, err := s.client.Select(ctx, s.collection, remote.Query{
		Where:   remote.Eq("is_active", true),
		OrderBy: []remote.Order{{Column: "display_order"}, {Column: "created_at"}},
	})
	if remote.IsMissingSchema(err) {
		log.Warn("News links table is missing, starting with no links")
		return []NewsLink{}, nil
	}
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	links := make([]NewsLink, len(rows))
	for i, row := range rows {
		links[i] = NewsLinkFromRow(row)
	}
	sortNews(links)
	return links, nil
}

func (s *newsStore) Replace(links []NewsLink) {
	cp := make([]NewsLink, 0, len(links))
	for _, l := range links {
		if l.IsActive {
			cp = append(cp, l)
		}
	}
	sortNews(cp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = cp
}

func (s *newsStore) Load(ctx context.Context) error {
	links, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	s.Replace(links)
	return nil
}

func (s *newsStore) Active() []NewsLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]NewsLink(nil), s.links...)
}

// normalizeLink trims the link and fills its defaults. It fails when the link
// lacks a title or a usable http(s) url.
func normalizeLink(l NewsLink) (NewsLink, error) {
	l.Title = strings.TrimSpace(l.Title)
	l.URL = strings.TrimSpace(l.URL)
	if l.Type == "" {
		l.Type = LinkWeb
	}
	if l.Title == "" {
		return l, invalid("title", "is required")
	}
	if l.URL == "" {
		return l, invalid("url", "is required")
	}
	u, err := url.Parse(l.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return l, invalid("url", "must be an http(s) address, got %q", l.URL)
	}
	if !l.Type.Valid() {
		return l, invalid("type", "unknown link type %q", l.Type)
	}
	return l, nil
}

// Add appends one link after the current active ones.
func (s *newsStore) Add(ctx context.Context, l NewsLink) (NewsLink, error) {
	l, err := normalizeLink(l)
	if err != nil {
		return NewsLink{}, s.rejected("add", err)
	}
	done, err := s.begin("add")
	if err != nil {
		return NewsLink{}, err
	}
	defer done()

	s.mu.RLock()
	l.DisplayOrder = len(s.links)
	s.mu.RUnlock()
	l.IsActive = true
	l.CreatedAt = s.now().UTC()

	row, err := s.client.Insert(ctx, s.collection, withoutID(NewsLinkToRow(l)))
	if err != nil {
		return NewsLink{}, s.failed("add", err)
	}
	created := NewsLinkFromRow(row)
	s.written("add", created.ID)

	s.mu.Lock()
	s.links = append(s.links, created)
	sortNews(s.links)
	s.mu.Unlock()
	return created, nil
}

func (s *newsStore) Remove(ctx context.Context, id int64, confirmed bool) error {
	if err := s.confirm("remove", confirmed); err != nil {
		return err
	}
	done, err := s.begin("remove", id)
	if err != nil {
		return err
	}
	defer done()

	if _, err := s.client.Update(ctx, s.collection, byID(id), remote.Row{"is_active": false}); err != nil {
		return s.failed("remove", err)
	}
	s.written("remove", id)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.links[:0]
	for _, l := range s.links {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	s.links = kept
	return nil
}

// Save replaces the active set. Links without a title or a valid url are
// skipped; the rest are inserted with their position as display order.
func (s *newsStore) Save(ctx context.Context, links []NewsLink) ([]NewsLink, error) {
	valid := make([]NewsLink, 0, len(links))
	for _, l := range links {
		n, err := normalizeLink(l)
		if err != nil {
			log.Debug("Skipping invalid news link", "title", l.Title, "error", err)
			continue
		}
		valid = append(valid, n)
	}
	done, err := s.begin("save")
	if err != nil {
		return nil, err
	}
	defer done()

	if _, err := s.client.Update(ctx, s.collection, remote.Eq("is_active", true), remote.Row{"is_active": false}); err != nil {
		return nil, s.failed("save", err)
	}

	// The old set is inactive from here on, so the mirror holds whatever got
	// inserted even when an insert fails.
	now := s.now().UTC()
	saved := make([]NewsLink, 0, len(valid))
	defer func() {
		s.mu.Lock()
		s.links = append([]NewsLink(nil), saved...)
		sortNews(s.links)
		s.mu.Unlock()
	}()
	for i, l := range valid {
		l.DisplayOrder = i
		l.IsActive = true
		l.CreatedAt = now
		row, err := s.client.Insert(ctx, s.collection, withoutID(NewsLinkToRow(l)))
		if err != nil {
			return nil, s.failed("save", err)
		}
		saved = append(saved, NewsLinkFromRow(row))
	}
	s.written("save", int64(len(saved)))
	return saved, nil
}

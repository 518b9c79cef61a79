// Package investor serves the investor-facing startup listing: records from
// the prediction service mapped to display records, cached in Redis and
// searchable through Elasticsearch.
package investor

import (
	"context"
	"strings"

	"startup-insights/internal/common/logger"
	"startup-insights/internal/models"
	"startup-insights/internal/predictionapi"
)

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithIndex enables search through idx. When indexOnFetch is set every
// fresh fetch is also pushed to the index.
func WithIndex(idx Index, indexOnFetch bool) Option {
	return func(s *Service) {
		s.index = idx
		s.indexOnFetch = indexOnFetch
	}
}

// WithDebugEndpoint fetches from GET /debug_startups instead of GET /startups.
func WithDebugEndpoint() Option {
	return func(s *Service) { s.useDebug = true }
}

type Service struct {
	lister       predictionapi.Lister
	cache        Cache
	index        Index
	logger       logger.Logger
	useDebug     bool
	indexOnFetch bool
}

func NewService(lister predictionapi.Lister, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		lister: lister,
		logger: logger.Component(log, "investor"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the display records, from cache when possible. Cache and
// index failures are logged and never fail the listing.
func (s *Service) List(ctx context.Context) ([]models.StartupListing, error) {
	if s.cache != nil {
		listings, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("listing cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if ok {
			return listings, nil
		}
	}
	return s.fetch(ctx)
}

// Refresh drops the cached listing and fetches it again.
func (s *Service) Refresh(ctx context.Context) ([]models.StartupListing, error) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("listing cache invalidation failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) ([]models.StartupListing, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]models.StartupListing, 0, len(records))
	for _, raw := range records {
		listings = append(listings, models.ListingFromRaw(raw))
	}
	s.logger.Info("startup listing fetched", map[string]interface{}{
		"count": len(listings),
		"debug": s.useDebug,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, listings); err != nil {
			s.logger.Warn("listing cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.index != nil && s.indexOnFetch {
		if err := s.index.IndexListings(ctx, listings); err != nil {
			s.logger.Warn("listing indexing failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return listings, nil
}

func (s *Service) records(ctx context.Context) ([]map[string]interface{}, error) {
	if !s.useDebug {
		return s.lister.ListStartups(ctx)
	}
	debug, err := s.lister.DebugStartups(ctx)
	if err != nil {
		return nil, err
	}
	return debug.Startups, nil
}

// Search queries the index, falling back to filtering the listing in memory
// when no index is configured or the index fails.
func (s *Service) Search(ctx context.Context, q Query) (*SearchResult, error) {
	if s.index != nil {
		result, err := s.index.Search(ctx, q)
		if err == nil {
			return result, nil
		}
		s.logger.Warn("listing search failed, filtering in memory", map[string]interface{}{"error": err.Error()})
	}

	listings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterListings(listings, q), nil
}

func filterListings(listings []models.StartupListing, q Query) *SearchResult {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	matched := make([]models.StartupListing, 0, len(listings))
	for _, l := range listings {
		if text != "" && !strings.Contains(strings.ToLower(l.Name), text) {
			continue
		}
		if !sameFold(q.Industry, l.Industry) || !sameFold(q.Location, l.Location) ||
			!sameFold(q.InvestmentStage, l.InvestmentStage) || !sameFold(q.Prediction, l.Prediction) {
			continue
		}
		matched = append(matched, l)
	}

	from, size := q.page()
	total := len(matched)
	if from > total {
		from = total
	}
	end := from + size
	if end > total {
		end = total
	}
	return &SearchResult{Listings: matched[from:end], Total: total}
}

func sameFold(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}

package investor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"startup-insights/internal/common/database"
	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const listingMapping = `{
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"industry": {"type": "keyword"},
			"location": {"type": "keyword"},
			"investmentStage": {"type": "keyword"},
			"prediction": {"type": "keyword"},
			"logo": {"type": "keyword", "index": false},
			"raw": {"type": "object", "enabled": false}
		}
	}
}`

// Query filters the listing. Empty fields do not filter.
type Query struct {
	Text            string `json:"text,omitempty"`
	Industry        string `json:"industry,omitempty"`
	Location        string `json:"location,omitempty"`
	InvestmentStage string `json:"investmentStage,omitempty"`
	Prediction      string `json:"prediction,omitempty"`
	From            int    `json:"from,omitempty"`
	Size            int    `json:"size,omitempty"`
}

func (q Query) page() (from, size int) {
	from, size = q.From, q.Size
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return from, size
}

type SearchResult struct {
	Listings []models.StartupListing `json:"listings"`
	Total    int                     `json:"total"`
}

// Index makes listings searchable.
type Index interface {
	IndexListings(ctx context.Context, listings []models.StartupListing) error
	Search(ctx context.Context, q Query) (*SearchResult, error)
}

type ElasticIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewElasticIndex(es *database.ElasticsearchClient, index string) *ElasticIndex {
	return &ElasticIndex{es: es, index: index}
}

// EnsureIndex creates the listing index with its keyword mapping.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	return e.es.EnsureIndex(ctx, e.index, listingMapping)
}

// IndexListings bulk-upserts listings by ID.
func (e *ElasticIndex) IndexListings(ctx context.Context, listings []models.StartupListing) error {
	if len(listings) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, l := range listings {
		meta := map[string]interface{}{"index": map[string]interface{}{"_id": l.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(l); err != nil {
			return err
		}
	}

	client := e.es.Client
	res, err := client.Bulk(bytes.NewReader(buf.Bytes()),
		client.Bulk.WithContext(ctx),
		client.Bulk.WithIndex(e.index),
		client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchQueryFailedError("bulk_index", fmt.Errorf("%s", res.Status()))
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return apperrors.NewSearchQueryFailedError("bulk_index", err)
	}
	if body.Errors {
		return apperrors.NewSearchQueryFailedError("bulk_index", fmt.Errorf("some documents were rejected"))
	}
	return nil
}

func (e *ElasticIndex) Search(ctx context.Context, q Query) (*SearchResult, error) {
	from, size := q.page()
	body, err := json.Marshal(buildSearchQuery(q))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}
	res, err := req.Do(ctx, e.es.Client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, apperrors.NewIndexNotFoundError(e.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError("listing_search", fmt.Errorf("%s", res.Status()))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.StartupListing `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("listing_search", err)
	}

	out := &SearchResult{Listings: make([]models.StartupListing, 0, len(r.Hits.Hits)), Total: r.Hits.Total.Value}
	for _, hit := range r.Hits.Hits {
		out.Listings = append(out.Listings, hit.Source)
	}
	return out, nil
}

// buildSearchQuery matches free text on the name and filters the keyword
// fields exactly.
func buildSearchQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"name^3", "industry", "location"},
				"type":   "best_fields",
			},
		})
	}
	for _, f := range [][2]string{
		{"industry", q.Industry},
		{"location", q.Location},
		{"investmentStage", q.InvestmentStage},
		{"prediction", q.Prediction},
	} {
		if f[1] == "" {
			continue
		}
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{f[0]: f[1]},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"name.keyword": "asc"}},
	}
}

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
)

type AuditConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// AuditIndex writes every event as a document into an Elasticsearch index.
type AuditIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewAuditIndex(cfg AuditConfig) (*AuditIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}

	index := cfg.Index
	if index == "" {
		index = "auth-audit"
	}
	return &AuditIndex{es: client, index: index}, nil
}

func (a *AuditIndex) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: marshal: %w", err)
	}

	res, err := a.es.Index(a.index, bytes.NewReader(body), a.es.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("audit: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("audit: index: %s", res.Status())
	}
	return nil
}

type AuditQuery struct {
	UserID string
	Type   string
	From   int
	Size   int
}

// Search returns audit events newest first, filtered by user and event type
// when those are set.
func (a *AuditIndex) Search(ctx context.Context, q AuditQuery) (int64, []Event, error) {
	filters := make([]map[string]any, 0, 2)
	if q.UserID != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"user_id.keyword": q.UserID}})
	}
	if q.Type != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"type.keyword": q.Type}})
	}
	query := map[string]any{"match_all": map[string]any{}}
	if len(filters) > 0 {
		query = map[string]any{"bool": map[string]any{"filter": filters}}
	}

	body := map[string]any{
		"query": query,
		"sort":  []map[string]any{{"at": map[string]any{"order": "desc"}}},
		"from":  q.From,
		"size":  q.Size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("audit: encode query: %w", err)
	}

	res, err := a.es.Search(
		a.es.Search.WithContext(ctx),
		a.es.Search.WithIndex(a.index),
		a.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("audit: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("audit: search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Event `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("audit: decode: %w", err)
	}

	out := make([]Event, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		out[i] = hit.Source
	}
	return r.Hits.Total.Value, out, nil
}

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docubot/internal/config"
	"docubot/internal/models"
)

// PineconeStore talks to a managed index's HTTP data plane, reachable
// by api key and host.
type PineconeStore struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

func NewPineconeStore(cfg *config.PineconeConfig) *PineconeStore {
	host := cfg.Host
	if host != "" && !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PineconeStore{
		host:      strings.TrimSuffix(host, "/"),
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		client:    &http.Client{Timeout: timeout},
	}
}

func (p *PineconeStore) Upsert(ctx context.Context, records []models.VectorRecord) error {
	payload := struct {
		Vectors   []models.VectorRecord `json:"vectors"`
		Namespace string                `json:"namespace,omitempty"`
	}{Vectors: records, Namespace: p.namespace}

	var res struct {
		UpsertedCount int `json:"upsertedCount"`
	}
	if err := p.post(ctx, "/vectors/upsert", payload, &res); err != nil {
		return fmt.Errorf("upserting %d vectors: %w", len(records), err)
	}
	return nil
}

func (p *PineconeStore) DeleteAll(ctx context.Context) error {
	payload := struct {
		DeleteAll bool   `json:"deleteAll"`
		Namespace string `json:"namespace,omitempty"`
	}{DeleteAll: true, Namespace: p.namespace}

	if err := p.post(ctx, "/vectors/delete", payload, nil); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	return nil
}

func (p *PineconeStore) Query(ctx context.Context, vector []float32, k int) ([]models.Match, error) {
	payload := struct {
		Vector          []float32 `json:"vector"`
		TopK            int       `json:"topK"`
		IncludeMetadata bool      `json:"includeMetadata"`
		Namespace       string    `json:"namespace,omitempty"`
	}{Vector: vector, TopK: k, IncludeMetadata: true, Namespace: p.namespace}

	var res struct {
		Matches []struct {
			ID       string          `json:"id"`
			Score    float32         `json:"score"`
			Metadata models.Metadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := p.post(ctx, "/query", payload, &res); err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]models.Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		matches = append(matches, models.Match{
			ID:     m.ID,
			Text:   m.Metadata.Text,
			Source: m.Metadata.Source,
			Score:  m.Score,
		})
	}
	return matches, nil
}

func (p *PineconeStore) post(ctx context.Context, path string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed: %d, %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

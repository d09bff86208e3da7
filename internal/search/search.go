package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
)

// Index keeps a searchable copy of equipment outside the primary store.
type Index interface {
	Enabled() bool
	IndexEquipment(ctx context.Context, eq *models.Equipment) error
	DeleteEquipment(ctx context.Context, id uuid.UUID) error
	SearchEquipment(ctx context.Context, query string, offset, limit int) (int64, []uuid.UUID, error)
}

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

type document struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Status       string `json:"status"`
}

func toDocument(eq *models.Equipment) document {
	return document{
		ID:           eq.ID.String(),
		Name:         eq.Name,
		Type:         string(eq.Type),
		Brand:        eq.Brand,
		Model:        eq.Model,
		SerialNumber: eq.SerialNumber,
		Status:       string(eq.Status),
	}
}

type ESIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewESIndex(cfg Config) (*ESIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	index := cfg.Index
	if index == "" {
		index = "equipment"
	}
	return &ESIndex{es: client, index: index}, nil
}

// Ping checks that the cluster answers.
func (s *ESIndex) Ping(ctx context.Context) error {
	res, err := s.es.Info(s.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}

func (s *ESIndex) Enabled() bool { return true }

func (s *ESIndex) IndexEquipment(ctx context.Context, eq *models.Equipment) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(toDocument(eq)); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := s.es.Index(
		s.index,
		&buf,
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(eq.ID.String()),
		s.es.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index equipment: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index equipment: %s", responseError(res.Status(), res.Body))
	}
	return nil
}

func (s *ESIndex) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	res, err := s.es.Delete(s.index, id.String(), s.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete equipment: %s", responseError(res.Status(), res.Body))
	}
	return nil
}

func (s *ESIndex) SearchEquipment(ctx context.Context, query string, offset, limit int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "brand", "model", "serialNumber"},
				"fuzziness": "AUTO",
			},
		},
		"from":    offset,
		"size":    limit,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search equipment: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search equipment: %s", responseError(res.Status(), res.Body))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string   `json:"_id"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		raw := hit.Source.ID
		if raw == "" {
			raw = hit.ID
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func responseError(status string, body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	if len(b) == 0 {
		return status
	}
	return status + ": " + string(bytes.TrimSpace(b))
}

// Nop is used when no search cluster is configured.
type Nop struct{}

func (Nop) Enabled() bool                                            { return false }
func (Nop) IndexEquipment(context.Context, *models.Equipment) error { return nil }
func (Nop) DeleteEquipment(context.Context, uuid.UUID) error        { return nil }
func (Nop) SearchEquipment(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return 0, nil, nil
}

package search

import (
	"construction-backoffice/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "flats",
	}
}

// FlatDocument is the searchable projection of a flat. Money fields are
// indexed as plain floats for filtering only; the ledger never reads them
// back.
type FlatDocument struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Block       string `json:"block"`
	Floor       string `json:"floor"`
	FlatNumber  string `json:"flat_number"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	BuyerName   string `json:"buyer_name,omitempty"`
	BuyerMobile string `json:"buyer_mobile,omitempty"`
	TotalAmount float64 `json:"total_amount"`
	PaidAmount  float64 `json:"paid_amount"`
}

// NewFlatDocument projects a flat into its index document.
func NewFlatDocument(f *models.Flat) FlatDocument {
	total, _ := f.TotalAmount.Float64()
	paid, _ := f.PaidAmount.Float64()
	return FlatDocument{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		Block:       f.Block,
		Floor:       f.Floor,
		FlatNumber:  f.FlatNumber,
		Type:        string(f.Type),
		Status:      string(f.Status),
		BuyerName:   f.BuyerName,
		BuyerMobile: f.BuyerMobile,
		TotalAmount: total,
		PaidAmount:  paid,
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"flat_number",
		"block",
		"buyer_name",
		"buyer_mobile",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"project_id",
		"block",
		"floor",
		"type",
		"status",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"flat_number",
		"total_amount",
		"paid_amount",
	})
	return err
}

// IndexFlat indexes a single flat
func (s *SearchClient) IndexFlat(f *models.Flat) error {
	_, err := s.client.Index(s.index).AddDocuments([]FlatDocument{NewFlatDocument(f)})
	return err
}

// IndexFlats indexes multiple flats
func (s *SearchClient) IndexFlats(flats []models.Flat) error {
	if len(flats) == 0 {
		return nil
	}
	docs := make([]FlatDocument, 0, len(flats))
	for i := range flats {
		docs = append(docs, NewFlatDocument(&flats[i]))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// RemoveFlats drops documents for deleted flats
func (s *SearchClient) RemoveFlats(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).DeleteDocuments(ids)
	return err
}

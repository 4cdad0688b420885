package search

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query     string
	ProjectID string
	Block     string
	Floor     string
	Statuses  []string
	Types     []string
	SortBy    string
	Limit     int64
}

// FilterSearch performs flat search with filters
func (s *SearchClient) FilterSearch(params FilterParams) ([]FlatDocument, error) {
	var filters []string

	if params.ProjectID != "" {
		filters = append(filters, fmt.Sprintf("project_id = '%s'", params.ProjectID))
	}
	if params.Block != "" {
		filters = append(filters, fmt.Sprintf("block = '%s'", params.Block))
	}
	if params.Floor != "" {
		filters = append(filters, fmt.Sprintf("floor = '%s'", params.Floor))
	}

	if len(params.Statuses) > 0 {
		statusFilters := make([]string, len(params.Statuses))
		for i, st := range params.Statuses {
			statusFilters[i] = fmt.Sprintf("status = '%s'", st)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(statusFilters, " OR ")))
	}

	if len(params.Types) > 0 {
		typeFilters := make([]string, len(params.Types))
		for i, t := range params.Types {
			typeFilters[i] = fmt.Sprintf("type = '%s'", t)
		}
		filters = append(filters, fmt.Sprintf("(%s)", strings.Join(typeFilters, " OR ")))
	}

	var filterStr string
	if len(filters) > 0 {
		filterStr = strings.Join(filters, " AND ")
	}

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filterStr != "" {
		searchReq.Filter = filterStr
	}
	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	docs := make([]FlatDocument, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		docs = append(docs, parseFlatFromHit(hit))
	}

	return docs, nil
}

// parseFlatFromHit converts a search hit to a FlatDocument
func parseFlatFromHit(hit interface{}) FlatDocument {
	hitMap, ok := hit.(map[string]interface{})
	if !ok {
		return FlatDocument{}
	}

	doc := FlatDocument{
		ID:          getString(hitMap, "id"),
		ProjectID:   getString(hitMap, "project_id"),
		Block:       getString(hitMap, "block"),
		Floor:       getString(hitMap, "floor"),
		FlatNumber:  getString(hitMap, "flat_number"),
		Type:        getString(hitMap, "type"),
		Status:      getString(hitMap, "status"),
		BuyerName:   getString(hitMap, "buyer_name"),
		BuyerMobile: getString(hitMap, "buyer_mobile"),
	}

	if total, ok := hitMap["total_amount"].(float64); ok {
		doc.TotalAmount = total
	}
	if paid, ok := hitMap["paid_amount"].(float64); ok {
		doc.PaidAmount = paid
	}

	return doc
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

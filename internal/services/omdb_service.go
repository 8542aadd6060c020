package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/liamwears/moviefinder/internal/models"
)

// OMDBService handles interactions with the Open Movie Database API
type OMDBService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

// OMDBConfig holds OMDB service configuration
type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOMDBService creates a new OMDB service
func NewOMDBService(cfg OMDBConfig) *OMDBService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.omdbapi.com/"
	}

	return &OMDBService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
	}
}

// omdbSearchResponse represents a search response from OMDB
type omdbSearchResponse struct {
	Search       []models.Item `json:"Search"`
	TotalResults string        `json:"totalResults"`
	Response     string        `json:"Response"`
	Error        string        `json:"Error"`
}

// omdbDetailResponse represents a detail response from OMDB
type omdbDetailResponse struct {
	models.ItemDetail
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// doRequest performs an HTTP request to the OMDB API
func (s *OMDBService) doRequest(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	// Add query parameters
	q := req.URL.Query()
	for key, value := range params {
		q.Set(key, value)
	}
	q.Set("apikey", s.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transport(fmt.Errorf("failed to execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transport(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, transport(fmt.Errorf("OMDB API error: status %d", resp.StatusCode))
	}

	return body, nil
}

// Search performs a keyword search and returns one page of results
func (s *OMDBService) Search(ctx context.Context, query string, page int) (*models.SearchPage, error) {
	if page < 1 {
		page = 1
	}

	body, err := s.doRequest(ctx, map[string]string{
		"s":    strings.TrimSpace(query),
		"page": strconv.Itoa(page),
	})
	if err != nil {
		return nil, err
	}

	var response omdbSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, transport(fmt.Errorf("failed to unmarshal search results: %w", err))
	}

	// Response "False" arrives with HTTP 200 and is a semantic failure
	if response.Response == "False" {
		return nil, notFound(response.Error, "No movies found")
	}

	total, err := strconv.Atoi(strings.TrimSpace(response.TotalResults))
	if err != nil || total < 0 {
		total = 0
	}

	items := response.Search
	if items == nil {
		items = []models.Item{}
	}

	return &models.SearchPage{
		Items:        items,
		TotalResults: total,
		Page:         page,
	}, nil
}

// FetchDetail retrieves the full record for an identifier
func (s *OMDBService) FetchDetail(ctx context.Context, id string) (*models.ItemDetail, error) {
	body, err := s.doRequest(ctx, map[string]string{
		"i":    id,
		"plot": "full",
	})
	if err != nil {
		return nil, err
	}

	var response omdbDetailResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, transport(fmt.Errorf("failed to unmarshal detail: %w", err))
	}

	if response.Response == "False" {
		return nil, notFound(response.Error, "Movie not found")
	}

	detail := response.ItemDetail
	return &detail, nil
}

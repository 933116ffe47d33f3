package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skolapp-quizsync/internal/domain"
)

// Fetcher retrieves the authoritative quiz list.
type Fetcher interface {
	FetchQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
}

// HTTPFetcher GETs a JSON array of quiz summaries. Any non-2xx status is a failure.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (f *HTTPFetcher) FetchQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var list []domain.QuizSummary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode quiz list: %w", err)
	}
	if list == nil {
		list = []domain.QuizSummary{}
	}
	return list, nil
}

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/searchd-io/searchd/pkg/types"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPSource queries a remote searchd-compatible endpoint. The CLI uses it
// as the fetch transport; the gateway can use it to front another gateway.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSource(endpoint string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPSource{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	query := url.Values{}
	query.Set("q", req.Query)
	query.Set("page", strconv.Itoa(req.Page))
	if req.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(req.PerPage))
	}

	u := fmt.Sprintf("%s/api/v1/search?%s", s.endpoint, query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.ErrSearchTransport{Endpoint: s.endpoint, Err: err}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		// Context cancellation surfaces as a transport error from Do;
		// unwrap it so the coordinator classifies it as cancelled. Deadline
		// expiry stays a transport failure.
		return nil, wrapBackendErr(ctx, s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.ErrSearchTransport{
			Endpoint: s.endpoint,
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var result types.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &types.ErrSearchDecode{Endpoint: s.endpoint, Err: err}
	}

	return &result, nil
}

// Package feed implements the fetch collaborator: it pulls raw recall
// batches from the CPSC RecallRetrieval web service and hands back validated
// domain records. A failed fetch is terminal for that attempt — the caller
// decides whether and when to try again; no retry policy lives here.
//
// Error taxonomy: ErrMalformedURL, ErrTransport, and domain.ErrDecode cover
// every failure mode. Callers classify with errors.Is.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// DefaultBaseURL is the public recall endpoint.
const DefaultBaseURL = "https://www.saferproducts.gov/RestWebServices/Recall"

// maxBodyBytes caps how much of a response body is read. The full dataset is
// a few tens of megabytes; anything past this is a misbehaving server.
const maxBodyBytes = 128 << 20

var (
	// ErrMalformedURL reports an unusable base URL.
	ErrMalformedURL = errors.New("feed: malformed url")

	// ErrTransport reports a network-level failure or non-200 response.
	ErrTransport = errors.New("feed: transport failure")
)

// Client fetches recall batches over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for baseURL ("" uses DefaultBaseURL).
// httpClient == nil uses a client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Fetch retrieves all recalls published on or after since, decoded and
// scrubbed of embedded HTML markup. The returned slice preserves feed order.
//
// Failures leave no partial result: the caller receives either the full
// decoded batch or an error from the taxonomy in this package.
func (c *Client) Fetch(ctx context.Context, since time.Time) ([]domain.Recall, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedURL, c.baseURL)
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("RecallDateStart", since.UTC().Format("2006-01-02"))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	recalls, err := domain.DecodeRecalls(body)
	if err != nil {
		return nil, err // already wraps domain.ErrDecode
	}

	for i := range recalls {
		scrubRecall(&recalls[i])
	}
	return recalls, nil
}

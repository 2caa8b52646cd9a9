package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient talks to a dictionary/translation HTTP service.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
}

// NewHTTPClient builds a provider client. language is the target language
// for translations.
func NewHTTPClient(baseURL, apiKey, language string) *HTTPClient {
	return &HTTPClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		language: language,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Close releases idle connections.
func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}

type defineResponse struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Phonetic   string `json:"phonetic,omitempty"`
	Error      string `json:"error,omitempty"`
}

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translation string `json:"translation"`
	Error       string `json:"error,omitempty"`
}

// Define fetches the dictionary entry for a word. An unknown word is a
// normal outcome, reported as Found=false rather than an error.
func (c *HTTPClient) Define(ctx context.Context, word string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/v1/define/%s?lang=%s", c.baseURL, url.PathEscape(word), url.QueryEscape(c.language))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return NotFound(word), nil
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var dr defineResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if dr.Error != "" {
		return nil, fmt.Errorf("provider error: %s", dr.Error)
	}
	if dr.Definition == "" {
		return NotFound(word), nil
	}

	return &Result{
		Word:       word,
		Definition: dr.Definition,
		Phonetic:   dr.Phonetic,
		Found:      true,
	}, nil
}

// Translate translates a sentence or paragraph into the client's target
// language.
func (c *HTTPClient) Translate(ctx context.Context, text string) (*Result, error) {
	reqBody, err := json.Marshal(translateRequest{Text: text, Target: c.language})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/translate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var tr translateResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("provider error: %s", tr.Error)
	}

	return &Result{
		Word:        text,
		Translation: tr.Translation,
		Found:       tr.Translation != "",
	}, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

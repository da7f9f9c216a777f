// Package normalize standardizes free-text complaint sub-categories through
// a hosted text-generation model.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swarajdesk/backend/internal/metrics"

	"github.com/rs/zerolog"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// statusError is a non-2xx reply from the endpoint.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("normalizer returned status %d", e.code)
}

// Client calls a generateContent endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   TokenCache
	log      zerolog.Logger
}

// NewClient returns a Client. An empty endpoint yields a client that
// always returns its input.
func NewClient(endpoint string, tokens TokenCache, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		log:      log.With().Str("component", "normalizer").Logger(),
	}
}

// Standardize returns the model's canonical form of raw. Any failure returns
// raw unchanged. A 401 on the first attempt invalidates the cached token and
// retries exactly once.
func (c *Client) Standardize(ctx context.Context, raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" || c.endpoint == "" || c.tokens == nil {
		metrics.Normalizations.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return raw
	}

	for attempt := 0; attempt < 2; attempt++ {
		std, err := c.generate(ctx, text)
		if err == nil {
			if std == "" {
				break
			}
			metrics.Normalizations.WithLabelValues(metrics.OutcomeStandardized).Inc()
			return std
		}

		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusUnauthorized && attempt == 0 {
			c.log.Warn().Msg("normalizer rejected token, refreshing")
			c.tokens.Invalidate(ctx)
			continue
		}

		c.log.Warn().Err(err).Str("sub_category", text).Msg("normalization failed, using original")
		break
	}

	metrics.Normalizations.WithLabelValues(metrics.OutcomeFallback).Inc()
	return raw
}

func (c *Client) generate(ctx context.Context, text string) (string, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &statusError{code: resp.StatusCode}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode normalizer response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text), nil
}

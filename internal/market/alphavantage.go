package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.alphavantage.co/query"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AlphaVantageProvider queries the function/symbol/apikey style endpoint.
type AlphaVantageProvider struct {
	baseURL string
	apiKey  string
	client  HTTPClient
	timeout time.Duration
	limiter *rate.Limiter
}

type Option func(*AlphaVantageProvider)

func WithBaseURL(baseURL string) Option {
	return func(p *AlphaVantageProvider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

func WithHTTPClient(c HTTPClient) Option {
	return func(p *AlphaVantageProvider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default. It only
// applies to *http.Client, whichever option supplied it.
func WithTimeout(timeout time.Duration) Option {
	return func(p *AlphaVantageProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithRequestsPerMinute spaces outgoing requests. Zero disables pacing.
func WithRequestsPerMinute(n int) Option {
	return func(p *AlphaVantageProvider) {
		if n > 0 {
			p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

func NewAlphaVantageProvider(apiKey string, opts ...Option) *AlphaVantageProvider {
	p := &AlphaVantageProvider{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if hc, ok := p.client.(*http.Client); ok && p.timeout > 0 {
		c := *hc
		c.Timeout = p.timeout
		p.client = &c
	}
	return p
}

func (p *AlphaVantageProvider) Query(ctx context.Context, function Function, symbol string) (Payload, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Variant: symbol, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("function", string(function))
	q.Set("symbol", symbol)
	q.Set("apikey", p.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which carries the api key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, &TransportError{Variant: symbol, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Variant: symbol, StatusCode: resp.StatusCode}
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Variant: symbol, Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload, nil
}

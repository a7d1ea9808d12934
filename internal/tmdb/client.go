package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"celebrity-trivia/internal/metrics"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	DefaultLanguage     = "en-US"
	defaultTimeout      = 15 * time.Second
)

// Kind selects one of the fixed metadata endpoints.
type Kind int

const (
	KindSearch Kind = iota + 1
	KindMovie
	KindCredits
	KindRecommendations
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindMovie:
		return "movie"
	case KindCredits:
		return "credits"
	case KindRecommendations:
		return "recommendations"
	case KindImage:
		return "image"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cacheable reports whether responses of this kind are JSON documents worth caching.
func (k Kind) Cacheable() bool {
	return k >= KindSearch && k <= KindRecommendations
}

// Fetcher issues one metadata request and returns the raw response body.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, param string) ([]byte, error)
}

// Options configures a Client. Zero values fall back to the public endpoints.
type Options struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client talks to the remote movie catalog.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	http         *http.Client
}

func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		language:     opts.Language,
		http:         opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = DefaultImageBaseURL
	}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	return c
}

// URL fills the endpoint template for kind and attaches auth and locale parameters.
func (c *Client) URL(kind Kind, param string) (string, error) {
	q := url.Values{}
	var endpoint string
	switch kind {
	case KindSearch:
		endpoint = c.baseURL + "/search/movie"
		q.Set("query", param)
		q.Set("page", "1")
		q.Set("include_adult", "false")
	case KindMovie:
		endpoint = c.baseURL + "/movie/" + url.PathEscape(param)
	case KindCredits:
		endpoint = c.baseURL + "/movie/" + url.PathEscape(param) + "/credits"
	case KindRecommendations:
		endpoint = c.baseURL + "/movie/" + url.PathEscape(param) + "/recommendations"
	case KindImage:
		if !strings.HasPrefix(param, "/") {
			param = "/" + param
		}
		endpoint = c.imageBaseURL + param
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRequestKind, kind)
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	return endpoint + "?" + q.Encode(), nil
}

// Fetch performs a single GET. Any status other than 200 is an UpstreamRequestError.
func (c *Client) Fetch(ctx context.Context, kind Kind, param string) ([]byte, error) {
	u, err := c.URL(kind, param)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	slog.Debug("querying metadata api", "kind", kind, "param", param)
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the full URL, api key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, c.fail(&UpstreamRequestError{Kind: kind, Param: param, Reason: "transport", Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return nil, c.fail(&UpstreamRequestError{Kind: kind, Param: param, StatusCode: resp.StatusCode, Reason: reason})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&UpstreamRequestError{Kind: kind, Param: param, Reason: "read body", Err: err})
	}
	metrics.UpstreamRequests.WithLabelValues(kind.String(), "ok").Inc()
	return body, nil
}

func (c *Client) fail(err *UpstreamRequestError) error {
	metrics.UpstreamRequests.WithLabelValues(err.Kind.String(), "error").Inc()
	slog.Warn("metadata request failed", "kind", err.Kind, "param", err.Param, "status", err.StatusCode, "reason", err.Reason)
	return err
}

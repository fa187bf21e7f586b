package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
	"golang.org/x/net/proxy"
)

// TokenSource provides the bearer token attached to authenticated requests.
type TokenSource interface {
	AccessToken() (string, error)
}

type Options struct {
	// Method is the HTTP method, GET if empty.
	Method string
	// Body is encoded as JSON when not nil.
	Body any
	// Header holds additional request headers.
	Header http.Header
}

// Client issues JSON requests relative to a base URL. It never retries and has no timeout
// other than the one of the underlying transport.
type Client struct {
	log bridgemanager.Logger

	baseUrl *url.URL
	client  *http.Client
}

// NewHttpClient returns an HTTP client that honours the proxy environment variables,
// including SOCKS proxies from ALL_PROXY.
func NewHttpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = proxy.Dial
	return &http.Client{Transport: transport}
}

func NewClient(log bridgemanager.Logger, client *http.Client, baseUrl string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseUrl, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url scheme: %s", baseUrl)
	}

	if client == nil {
		client = NewHttpClient()
	}

	return &Client{log: log, baseUrl: u, client: client}, nil
}

// WithPrefix returns a client sharing the same transport whose paths are relative to prefix.
func (c *Client) WithPrefix(prefix string) *Client {
	return &Client{log: c.log, baseUrl: c.Url(prefix), client: c.client}
}

// Url resolves path against the client base URL.
func (c *Client) Url(path string) *url.URL {
	if path == "" || path == "/" {
		u := *c.baseUrl
		return &u
	}

	return c.baseUrl.JoinPath(path)
}

// HttpClient exposes the underlying HTTP client, e.g. for websocket dialing.
func (c *Client) HttpClient() *http.Client {
	return c.client
}

// Request performs a request to path and decodes the JSON response into out. A nil out discards
// the response body. Failures are returned as *NetworkError or *ApiError.
func (c *Client) Request(ctx context.Context, tokens TokenSource, path string, opts Options, rctx RequestContext, out any) error {
	method := opts.Method
	if len(method) == 0 {
		method = http.MethodGet
	}

	header := http.Header{
		"Accept":     []string{"application/json"},
		"User-Agent": []string{bridgemanager.UserAgent()},
	}
	for key, values := range opts.Header {
		header[key] = values
	}

	if tokens != nil {
		token, err := tokens.AccessToken()
		if err != nil {
			return fmt.Errorf("failed obtaining access token for %s %s request: %w", rctx.Service, rctx.RequestType, err)
		}

		header.Set("Authorization", "Bearer "+token)
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("failed marshalling %s %s request: %w", rctx.Service, rctx.RequestType, err)
		}

		header.Set("Content-Type", "application/json")
		body = bytes.NewReader(data)
	}

	reqUrl := c.Url(path)
	req, err := http.NewRequestWithContext(ctx, method, reqUrl.String(), body)
	if err != nil {
		return fmt.Errorf("failed creating %s %s request: %w", rctx.Service, rctx.RequestType, err)
	}

	req.Header = header

	c.log.Tracef("%s %s", method, reqUrl.Path)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{RequestContext: rctx, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{RequestContext: rctx, Err: fmt.Errorf("failed reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newApiError(rctx, resp.StatusCode, respBody)
		c.log.Debugf("%s %s returned %d: %s", method, reqUrl.Path, resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed unmarshalling %s %s response: %w", rctx.Service, rctx.RequestType, err)
	}

	return nil
}

package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/seralo/authflow/session"
)

// apiClient is the request pipeline: it builds headers, resolves the API
// root, issues HTTP verbs, and classifies outcomes. A settled response is
// always returned to the caller regardless of status; statuses above 299
// additionally publish a response_error event on the notify side-channel.
// Only transport failures surface as errors.
type apiClient struct {
	http    *http.Client
	root    string
	state   *session.State
	notify  *notifyDispatcher
	metrics *Metrics
}

func newAPIClient(httpClient *http.Client, root string, state *session.State, notify *notifyDispatcher, metrics *Metrics) *apiClient {
	return &apiClient{
		http:    httpClient,
		root:    strings.TrimRight(root, "/"),
		state:   state,
		notify:  notify,
		metrics: metrics,
	}
}

// Post issues a POST request with opts.Data as the JSON body.
func (c *apiClient) Post(ctx context.Context, path string, opts RequestOptions) (*APIResponse, error) {
	return c.do(ctx, http.MethodPost, path, opts)
}

// Get issues a GET request. A non-empty opts.Data map is serialized as a
// verbatim key=value query string.
func (c *apiClient) Get(ctx context.Context, path string, opts RequestOptions) (*APIResponse, error) {
	return c.do(ctx, http.MethodGet, path, opts)
}

// Put issues a PUT request with opts.Data as the JSON body.
func (c *apiClient) Put(ctx context.Context, path string, opts RequestOptions) (*APIResponse, error) {
	return c.do(ctx, http.MethodPut, path, opts)
}

// Patch issues a PATCH request with opts.Data as the JSON body.
func (c *apiClient) Patch(ctx context.Context, path string, opts RequestOptions) (*APIResponse, error) {
	return c.do(ctx, http.MethodPatch, path, opts)
}

// Delete issues a DELETE request.
func (c *apiClient) Delete(ctx context.Context, path string, opts RequestOptions) (*APIResponse, error) {
	return c.do(ctx, http.MethodDelete, path, opts)
}

func (c *apiClient) do(ctx context.Context, method, path string, opts RequestOptions) (*APIResponse, error) {
	url := c.root + "/" + strings.TrimLeft(path, "/")

	var body io.Reader
	if method == http.MethodGet {
		if qs := queryString(opts.Data); qs != "" {
			url = url + "?" + qs
		}
	} else if opts.Data != nil {
		encoded, err := json.Marshal(opts.Data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, value := range c.headers(opts) {
		req.Header.Set(key, value)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.Inc(MetricTransportError)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()
	c.metrics.Observe(MetricRequestLatency, time.Since(start))

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		c.metrics.Inc(MetricTransportError)
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp := &APIResponse{Status: res.StatusCode, Body: raw}
	if resp.Status > 299 {
		// Application-level error: carried as data, flagged on the
		// side-channel, never raised.
		c.metrics.Inc(MetricResponseError)
		c.emitResponseError(ctx, method, path, resp)
	}

	return resp, nil
}

// headers builds the default header set and merges caller headers last, so
// callers win on key collision.
func (c *apiClient) headers(opts RequestOptions) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	if !opts.SkipAuthentication {
		if token := c.state.Token(); token != "" {
			headers["Authorization"] = c.state.TokenType() + " " + token
		}
	}

	for key, value := range opts.Headers {
		headers[key] = value
	}

	return headers
}

func (c *apiClient) emitResponseError(ctx context.Context, method, path string, resp *APIResponse) {
	if c.notify == nil {
		return
	}

	event := newEvent(notifyEventResponseError)
	event.Method = method
	event.Path = path
	event.Status = resp.Status
	event.Response = resp.Body
	event.Error = string(notifyErrApplication)

	c.notify.Emit(ctx, event)
}

// queryString renders a map payload as key=value pairs joined with "&".
// Values are inserted verbatim, with no percent-encoding; the backend owns
// the wire format. Keys are sorted for a stable URL.
func queryString(data any) string {
	if data == nil {
		return ""
	}

	pairs := map[string]string{}
	switch m := data.(type) {
	case map[string]string:
		for key, value := range m {
			pairs[key] = value
		}
	case map[string]any:
		for key, value := range m {
			pairs[key] = fmt.Sprint(value)
		}
	case FormData:
		for key, value := range m {
			pairs[key] = fmt.Sprint(value)
		}
	default:
		return ""
	}
	if len(pairs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+pairs[key])
	}
	return strings.Join(parts, "&")
}

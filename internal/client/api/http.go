package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mgallardo/freightdeck/internal/common"
	"github.com/mgallardo/freightdeck/internal/entity"
)

// HTTPClient talks JSON to the reference-data endpoints:
//
//	GET    /api/mantenedores/version
//	GET    /api/mantenedores
//	GET    /api/mantenedores/types
//	GET    /api/mantenedores/type/{type}
//	POST   /api/mantenedores
//	PUT    /api/mantenedores/{id}
//	DELETE /api/mantenedores/{id}
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient builds a client for the given base URL (scheme://host[:port]).
// tokens may be nil, in which case requests go out unauthenticated.
func NewHTTPClient(baseURL string, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

type versionResponse struct {
	Version int64 `json:"version"`
}

type itemResponse struct {
	Message string        `json:"message"`
	Item    entity.Entity `json:"item"`
}

type itemsResponse struct {
	Items []entity.Entity `json:"items"`
}

type typesResponse struct {
	Types []string `json:"types"`
}

// errorBody is the error envelope the backend uses: either a single message
// or a list of field-level validation messages.
type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func (c *HTTPClient) Version(ctx context.Context) (int64, error) {
	var out versionResponse
	if err := c.do(ctx, http.MethodGet, "/api/mantenedores/version", nil, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}

func (c *HTTPClient) FetchAll(ctx context.Context) (*entity.Snapshot, error) {
	var out entity.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/mantenedores", nil, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

func (c *HTTPClient) FetchByType(ctx context.Context, t entity.Type) ([]entity.Entity, error) {
	var out itemsResponse
	path := "/api/mantenedores/type/" + url.PathEscape(string(t))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *HTTPClient) Types(ctx context.Context) ([]string, error) {
	var out typesResponse
	if err := c.do(ctx, http.MethodGet, "/api/mantenedores/types", nil, &out); err != nil {
		return nil, err
	}
	return out.Types, nil
}

func (c *HTTPClient) Create(ctx context.Context, t entity.Type, attrs map[string]any) (*entity.Entity, error) {
	body := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		body[k] = v
	}
	body["type"] = t

	var out itemResponse
	if err := c.do(ctx, http.MethodPost, "/api/mantenedores", body, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *HTTPClient) Update(ctx context.Context, id entity.ID, attrs map[string]any) (*entity.Entity, error) {
	var out itemResponse
	path := "/api/mantenedores/" + url.PathEscape(string(id))
	if err := c.do(ctx, http.MethodPut, path, attrs, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id entity.ID) error {
	path := "/api/mantenedores/" + url.PathEscape(string(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do executes a single JSON round trip and maps non-2xx responses to typed
// errors. Transport failures wrap common.ErrorUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to obtain credential: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.mapError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mapError turns an error response into an *Error, preferring the structured
// field-message list when the server sent one.
func (c *HTTPClient) mapError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
			apiErr.Errors = eb.Errors
		}
	}
	if apiErr.Message == "" && len(apiErr.Errors) == 0 {
		apiErr.Message = resp.Status
	}
	return apiErr
}

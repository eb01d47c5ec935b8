package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/common"
)

// TokenSource yields the current access token. It is consulted on every
// authenticated request.
type TokenSource interface {
	Access(ctx context.Context) (string, error)
}

// HTTPClient talks REST/JSON to the pdfier backend.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	tokens  TokenSource
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

// request is one backend call. path is relative to the base URL.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	bearer      *string
	auth        bool
}

func (c *HTTPClient) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send performs r and returns the status, headers and body of a 2xx answer.
// Transport failures wrap ErrUnavailable; other statuses become *APIError.
func (c *HTTPClient) send(ctx context.Context, r request) (http.Header, []byte, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.path, r.query), body)
	if err != nil {
		return nil, nil, err
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	switch {
	case r.bearer != nil:
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+*r.bearer)
	case r.auth && c.tokens != nil:
		token, err := c.tokens.Access(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("read access token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, r.method, r.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, nil, newAPIError(resp.StatusCode, data)
	}
	return resp.Header, data, nil
}

// call performs r and decodes a JSON answer into out when out is non-nil.
func (c *HTTPClient) call(ctx context.Context, r request, out any) error {
	_, data, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, r.path, err)
	}
	return nil
}

func jsonBody(v any) ([]byte, error) {
	return json.Marshal(v)
}

// multipartBody encodes files under field plus extra plain fields.
func multipartBody(field string, files []Upload, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

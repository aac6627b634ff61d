// Package client is a Go client for the docshare API. It manages an
// anonymous session transparently: the first authenticated call establishes
// one, and a session lost to expiry or a server restart is re-established
// automatically before the call is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Document mirrors the server's record representation.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	OwnerID    string    `json:"ownerid"`
	SharedWith []string  `json:"sharedwith"`
	UploadedAt time.Time `json:"uploadedat"`
}

// Session mirrors the server's resolved identity.
type Session struct {
	UserID    string    `json:"user_id"`
	Anonymous bool      `json:"anonymous"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIError is a structured error response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

type signInResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to a docshare server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	token   string
	session *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken seeds the client with a custom token instead of an anonymous
// session. The token is resolved lazily on the first call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the current session, or nil before the first sign-in.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SignInAnonymously establishes a fresh anonymous session, replacing any
// current one.
func (c *Client) SignInAnonymously(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/anonymous", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anonymous sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var result signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse sign-in response: %w", err)
	}

	c.mu.Lock()
	c.token = result.Token
	c.session = result.Session
	c.mu.Unlock()

	return result.Session, nil
}

// SignInWithToken resolves a custom token to a session and uses it for
// subsequent calls.
func (c *Client) SignInWithToken(ctx context.Context, token string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"token": token})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse sign-in response: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.session = result.Session
	c.mu.Unlock()

	return result.Session, nil
}

// Upload stores a blob under the caller's identity and returns its record.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*Document, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var doc Document
	err = c.do(ctx, http.MethodPost, "/documents", body.Bytes(), writer.FormDataContentType(), http.StatusCreated, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the caller's visible record set.
func (c *Client) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.do(ctx, http.MethodGet, "/documents", nil, "", http.StatusOK, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns a single visible record.
func (c *Client) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, "/documents/"+id, nil, "", http.StatusOK, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes an owned record.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+id, nil, "", http.StatusNoContent, nil)
}

// Share grants granteeID read access to an owned record.
func (c *Client) Share(ctx context.Context, id, granteeID string) error {
	body, _ := json.Marshal(map[string]string{"granteeId": granteeID})
	return c.do(ctx, http.MethodPost, "/documents/"+id+"/share", body, "application/json", http.StatusNoContent, nil)
}

// Revoke removes granteeID from an owned record's grantee set.
func (c *Client) Revoke(ctx context.Context, id, granteeID string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+id+"/share/"+granteeID, nil, "", http.StatusNoContent, nil)
}

// do performs one authenticated request. A missing session is established
// first; a 401 re-establishes the anonymous session and retries once.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, wantStatus int, out any) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if _, err := c.SignInAnonymously(ctx); err != nil {
			return fmt.Errorf("session recovery: %w", err)
		}
		resp, err = c.send(ctx, method, path, body, contentType)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.applyAuth(req)

	return c.httpClient.Do(req)
}

func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return nil
	}
	_, err := c.SignInAnonymously(ctx)
	return err
}

func (c *Client) applyAuth(req *http.Request) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN"}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}

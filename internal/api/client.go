// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"time"

	"github.com/xst-ai/xst-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeRateLimited
	ErrTypeInvalidResponse
	ErrTypeServer
)

// Sentinel errors for easy checking.
var (
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "not logged in"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrRateLimited  = &ClientError{Type: ErrTypeRateLimited, Message: "too many requests"}
)

// IsUnauthorized checks if an error indicates a missing or expired session.
func IsUnauthorized(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnauthorized
	}
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited checks if an error is a 429-class rejection.
func IsRateLimited(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeRateLimited
	}
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin (e.g. https://api.example.com).
	// Required; there is no default origin.
	BaseURL string

	// Timeout for regular JSON requests (default: 30s).
	Timeout time.Duration

	// UploadTimeout for multipart uploads (default: 60s).
	UploadTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
// BaseURL stays empty on purpose: its absence is a configuration error
// the UI surfaces, not something to paper over with a guess.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:       30 * time.Second,
		UploadTimeout: 60 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the xst backend.
//
// The session cookie set by /api/login lives in the client's cookie jar
// and rides along on every request, the same way the browser's
// credentialed fetch mode worked. The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	jar        *cookiejar.Jar
}

// NewClient creates a new backend client for the given base URL.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UploadTimeout == 0 {
		config.UploadTimeout = 60 * time.Second
	}

	// cookiejar.New never fails with a nil options struct.
	jar, _ := cookiejar.New(nil)

	return &Client{
		config: config,
		jar:    jar,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Cookies returns the cookies currently held for the backend origin.
// Used to persist the session between runs. The jar is queried under
// the API prefix: a session cookie set without a Path attribute is
// scoped by the jar to the login request's directory (/api), so a
// lookup at the bare origin would miss it. Path-matching still returns
// cookies scoped to "/".
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.config.BaseURL + "/api/")
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// SetCookies seeds the jar with previously persisted session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return
	}
	c.jar.SetCookies(u, cookies)
}

// ClearSession drops all cookies for the backend origin.
func (c *Client) ClearSession() {
	jar, _ := cookiejar.New(nil)
	c.jar = jar
	c.httpClient.Jar = jar
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login authenticates with email and password. On success the backend
// sets the session cookie, captured by the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.postJSON(ctx, "/api/login", CredentialsRequest{Email: email, Password: password}, nil)
}

// Register creates a new account. It does not log in; callers chain
// Login afterwards, matching the original registration flow.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.postJSON(ctx, "/api/register", CredentialsRequest{Email: email, Password: password}, nil)
}

// Logout invalidates the server-side session and clears the local jar.
func (c *Client) Logout(ctx context.Context) error {
	err := c.postJSON(ctx, "/api/logout", nil, nil)
	c.ClearSession()
	return err
}

// Me fetches the current identity and power balance.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp MeResponse
	if err := c.getJSON(ctx, "/api/me", &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// Conversations fetches the full conversation set for the current user.
func (c *Client) Conversations(ctx context.Context) ([]model.Conversation, error) {
	var resp ConversationsResponse
	if err := c.getJSON(ctx, "/api/conversation", &resp); err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// CreateConversation creates a new empty conversation and returns its ID.
func (c *Client) CreateConversation(ctx context.Context) (string, error) {
	var resp CreateConversationResponse
	if err := c.postJSON(ctx, "/api/conversation", nil, &resp); err != nil {
		return "", err
	}
	if resp.ConversationID == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "no conversation id in response"}
	}
	return resp.ConversationID, nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// Messages fetches the message history for a conversation.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var resp MessagesResponse
	path := "/api/message/list?conversationId=" + url.QueryEscape(conversationID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send posts user content to a conversation and returns the assistant reply.
func (c *Client) Send(ctx context.Context, conversationID, content string) (string, error) {
	var resp SendMessageResponse
	req := SendMessageRequest{ConversationID: conversationID, Content: content}
	if err := c.postJSON(ctx, "/api/message/send", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// Upload sends file content as a multipart request and returns the
// stored image URL. A 429 surfaces as ErrTypeRateLimited with the
// server's message so the composer can show it verbatim.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload request", Cause: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to read upload content", Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to finalize upload request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/upload", &body)
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	uploadClient := &http.Client{
		Timeout: c.config.UploadTimeout,
		Jar:     c.jar,
	}

	resp, err := uploadClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeConnection, Message: "upload failed", Cause: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return "", err
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode upload response", Cause: err}
	}
	if result.URL == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "no url in upload response"}
	}
	return result.URL, nil
}

// =============================================================================
// PAYMENT
// =============================================================================

// PreparePayment requests a payment QR code URL for the given amount and
// method. Completion is observed out-of-band via the next balance fetch.
func (c *Client) PreparePayment(ctx context.Context, amount int, method string) (string, error) {
	var resp PrepareResponse
	req := PrepareRequest{Amount: amount, Method: method}
	if err := c.postJSON(ctx, "/api/pay/prepare", req, &resp); err != nil {
		return "", err
	}
	if resp.QRCodeURL == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "no qrcode url in response"}
	}
	return resp.QRCodeURL, nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	return c.do(req, out)
}

// postJSON performs a POST with an optional JSON body and decodes the
// response into out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do executes the request, maps status codes to typed errors, and decodes
// the body into out when requested.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return &ClientError{Type: ErrTypeConnection, Message: "backend unreachable", Cause: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// checkStatus maps non-2xx responses to typed errors, preferring the
// backend's {error} message when present.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var serverErr errorResponse
	// Best effort; the envelope is optional.
	json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&serverErr)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if serverErr.Error != "" {
			return &ClientError{Type: ErrTypeUnauthorized, Message: serverErr.Error}
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		if serverErr.Error != "" {
			return &ClientError{Type: ErrTypeRateLimited, Message: serverErr.Error}
		}
		return ErrRateLimited
	default:
		msg := serverErr.Error
		if msg == "" {
			msg = "request failed: " + resp.Status
		}
		return &ClientError{Type: ErrTypeServer, Message: msg}
	}
}

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

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
)

// Client is a thin, bearer-authenticated HTTP client over the Griev-Ease
// REST contract. All durable state and business rules live server-side;
// the client only shapes requests and decodes responses.
type Client struct {
	baseURL    string
	otpBaseURL string
	httpClient *http.Client
	clientID   string
	token      string
}

type Option func(*Client)

// WithOTPBaseURL points OTP dispatch/verification at a separately
// deployed OTP service.
func WithOTPBaseURL(u string) Option {
	return func(c *Client) {
		c.otpBaseURL = strings.TrimRight(u, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clientID:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.otpBaseURL == "" {
		c.otpBaseURL = c.baseURL
	}
	return c
}

// SetToken attaches a bearer token to subsequent requests. An empty
// token reverts the client to anonymous calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// errorBody matches the backend's failure payload: "detail" is either a
// plain string or an object carrying a message.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Message string `json:"message"`
}

func decodeDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var d errorDetail
	if err := json.Unmarshal(eb.Detail, &d); err == nil {
		return d.Message
	}
	return ""
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Client-Id", c.clientID)
	return req, nil
}

// do executes req and returns the raw body for 2xx responses. Non-2xx
// responses are decoded into an AppError carrying the server detail.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := decodeDetail(body)
		log.Debug().
			Int("status", resp.StatusCode).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("detail", detail).
			Msg("request rejected")
		return nil, apperrors.Server(resp.StatusCode, detail)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return apperrors.Network(err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeServer, "Malformed server response", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, rawURL string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return apperrors.Internal(fmt.Sprintf("encode request: %v", err))
	}
	req, err := c.newRequest(ctx, http.MethodPost, rawURL, bytes.NewReader(payload), "application/json")
	if err != nil {
		return apperrors.Network(err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeServer, "Malformed server response", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return apperrors.Network(err)
	}
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeServer, "Malformed server response", err)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) otpURL(path string) string {
	return c.otpBaseURL + path
}

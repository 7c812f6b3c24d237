package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

const maxResponseBody = 16 << 20

// HTTPClient speaks the REST API of the original deployment
// (/api/getSalt, /api/login, /api/vault and friends).
type HTTPClient struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewHTTPClient builds a client for baseURL, e.g. http://host:3001/api.
// Idempotent requests are retried on transport failures and 5xx responses.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) *HTTPClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.CheckRetry = idempotentRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger: logger.With("module", "httpclient")}

	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: rc}
}

type methodKey struct{}

// idempotentRetryPolicy retries GETs only. A POST whose response was lost
// may already have consumed a ticket on the server, so it is never resent.
// The method travels in the request context because resp is nil on
// transport failures.
func idempotentRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	method, _ := ctx.Value(methodKey{}).(string)
	if method == "" && resp != nil && resp.Request != nil {
		method = resp.Request.Method
	}
	if method != http.MethodGet {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// leveledLogger adapts logging.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger logging.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.logger.Error(context.Background(), msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...any)  {}
func (l leveledLogger) Debug(msg string, kv ...any) {}
func (l leveledLogger) Warn(msg string, kv ...any)  { l.logger.Warn(context.Background(), msg, kv...) }

type apiMessage struct {
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	target := path
	if !strings.HasPrefix(path, "http") {
		target = c.baseURL + path
	}

	var reqBody any
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	ctx = context.WithValue(ctx, methodKey{}, method)
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var msg apiMessage
		_ = json.Unmarshal(data, &msg)
		return mapStatus(resp.StatusCode, msg.Message)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// mapStatus turns an HTTP failure into a client sentinel. The REST API
// reports most failures as 400, so the message text picks the sentinel.
func mapStatus(code int, message string) error {
	switch {
	case code == http.StatusUnauthorized:
		return ErrSessionExpired
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return ErrUnavailable
	}

	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "invalid credentials"):
		return ErrInvalidCredentials
	case strings.Contains(m, "ticket"):
		return ErrTicketExpired
	case strings.Contains(m, "otp"), strings.Contains(m, "invalid or expired code"):
		return ErrSecondFactorVerification
	case strings.Contains(m, "already exists"):
		return ErrAlreadyExists
	}
	if message == "" {
		message = http.StatusText(code)
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, message)
}

func (c *HTTPClient) Close() error {
	c.http.HTTPClient.CloseIdleConnections()
	return nil
}

// Ping hits the health endpoint at the root of the host.
func (c *HTTPClient) Ping(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/"
	u.RawQuery = ""

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, u.String(), "", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email, salt string, proof []byte) error {
	in := map[string]string{
		"email":      email,
		"salt":       salt,
		"auth_proof": base64.StdEncoding.EncodeToString(proof),
	}
	return c.do(ctx, http.MethodPost, "/register", "", in, nil)
}

func (c *HTTPClient) GetSalt(ctx context.Context, email string) (string, error) {
	var resp struct {
		Salt string `json:"salt"`
	}
	err := c.do(ctx, http.MethodGet, "/getSalt?email="+url.QueryEscape(email), "", nil, &resp)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}
	return resp.Salt, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, proof []byte) (*LoginResult, error) {
	in := map[string]string{
		"email":      email,
		"auth_proof": base64.StdEncoding.EncodeToString(proof),
	}
	var resp struct {
		Token         string `json:"token"`
		Premium       bool   `json:"is_premium"`
		TwoFARequired bool   `json:"twofa_required"`
		Ticket        string `json:"ticket"`
	}
	if err := c.do(ctx, http.MethodPost, "/login", "", in, &resp); err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:                resp.Token,
		Premium:              resp.Premium,
		SecondFactorRequired: resp.TwoFARequired,
		Ticket:               resp.Ticket,
	}, nil
}

func (c *HTTPClient) VerifySecondFactor(ctx context.Context, ticket, otp string) (*SessionGrant, error) {
	in := map[string]string{"ticket": ticket, "otp": otp}
	var resp struct {
		Token   string `json:"token"`
		Premium bool   `json:"is_premium"`
	}
	if err := c.do(ctx, http.MethodPost, "/2fa/verify-login", "", in, &resp); err != nil {
		return nil, err
	}
	return &SessionGrant{Token: resp.Token, Premium: resp.Premium}, nil
}

func documentPath(kind models.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown document kind %q", ErrBadRequest, kind)
	}
	return "/" + string(kind), nil
}

func (c *HTTPClient) FetchDocument(ctx context.Context, token string, kind models.Kind) (*models.Document, error) {
	path, err := documentPath(kind)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Blob json.RawMessage `json:"encrypted_blob"`
	}
	if err := c.do(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return decodeBlob(resp.Blob)
}

func (c *HTTPClient) SaveDocument(ctx context.Context, token string, kind models.Kind, doc *models.Document) error {
	path, err := documentPath(kind)
	if err != nil {
		return err
	}
	in := struct {
		Blob *models.Document `json:"encrypted_blob"`
	}{Blob: doc}
	return c.do(ctx, http.MethodPost, path, token, in, nil)
}

func (c *HTTPClient) SetupSecondFactor(ctx context.Context, token string) (*SecondFactorSetup, error) {
	var resp struct {
		Secret     string `json:"secret"`
		OTPAuthURL string `json:"otpauth_url"`
		QRCodeURL  string `json:"qrCodeURL"`
	}
	if err := c.do(ctx, http.MethodPost, "/2fa/setup", token, struct{}{}, &resp); err != nil {
		return nil, err
	}
	setup := &SecondFactorSetup{Secret: resp.Secret, OTPAuthURL: resp.OTPAuthURL}
	if setup.OTPAuthURL == "" {
		setup.OTPAuthURL = resp.QRCodeURL
	}
	return setup, nil
}

func (c *HTTPClient) EnableSecondFactor(ctx context.Context, token, otp string) error {
	return c.do(ctx, http.MethodPost, "/2fa/verify", token, map[string]string{"token": otp}, nil)
}

func (c *HTTPClient) SecondFactorStatus(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.do(ctx, http.MethodGet, "/2fa/status", token, nil, &resp); err != nil {
		return false, err
	}
	return resp.Enabled, nil
}

func (c *HTTPClient) DisableSecondFactor(ctx context.Context, token string, proof []byte) error {
	in := map[string]string{"auth_proof": base64.StdEncoding.EncodeToString(proof)}
	return c.do(ctx, http.MethodPost, "/2fa/disable", token, in, nil)
}

func (c *HTTPClient) VerifyPremium(ctx context.Context, token, key string) (*SessionGrant, error) {
	var resp struct {
		Token   string `json:"premiumToken"`
		Premium bool   `json:"is_premium"`
	}
	if err := c.do(ctx, http.MethodPost, "/premium/verifyPremium", token, map[string]string{"key": key}, &resp); err != nil {
		return nil, err
	}
	return &SessionGrant{Token: resp.Token, Premium: resp.Premium}, nil
}

func (c *HTTPClient) PremiumStatus(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Premium bool `json:"isPremium"`
	}
	if err := c.do(ctx, http.MethodGet, "/premium/status", token, nil, &resp); err != nil {
		return false, err
	}
	return resp.Premium, nil
}

func (c *HTTPClient) DisablePremium(ctx context.Context, token string, proof []byte) error {
	in := map[string]string{"auth_proof": base64.StdEncoding.EncodeToString(proof)}
	return c.do(ctx, http.MethodPost, "/premium/disable", token, in, nil)
}

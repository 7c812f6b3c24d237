package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL+"/api", 2*time.Second, logging.NewDiscardLogger())
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_GetSalt(t *testing.T) {
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getSalt", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("x-request-id"))
		if r.URL.Query().Get("email") != "a+b@c.d" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"salt": "c2FsdA=="})
	}))

	salt, err := c.GetSalt(context.Background(), "a+b@c.d")
	require.NoError(t, err)
	require.Equal(t, "c2FsdA==", salt)

	_, err = c.GetSalt(context.Background(), "nobody@c.d")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestHTTPClient_Login(t *testing.T) {
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		switch in["email"] {
		case "direct@x.y":
			writeJSON(w, http.StatusOK, map[string]any{"token": "T", "is_premium": false})
		case "twofa@x.y":
			writeJSON(w, http.StatusOK, map[string]any{"twofa_required": true, "ticket": "tk"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		}
	}))
	ctx := context.Background()

	res, err := c.Login(ctx, "direct@x.y", []byte{1})
	require.NoError(t, err)
	require.Equal(t, "T", res.Token)
	require.False(t, res.SecondFactorRequired)

	res, err = c.Login(ctx, "twofa@x.y", []byte{1})
	require.NoError(t, err)
	require.True(t, res.SecondFactorRequired)
	require.Equal(t, "tk", res.Ticket)

	_, err = c.Login(ctx, "bad@x.y", []byte{1})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHTTPClient_VerifySecondFactorErrors(t *testing.T) {
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch in["otp"] {
		case "000000":
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP code"})
		case "111111":
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid or expired ticket"})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"token": "T", "is_premium": true})
		}
	}))
	ctx := context.Background()

	_, err := c.VerifySecondFactor(ctx, "tk", "000000")
	require.ErrorIs(t, err, ErrSecondFactorVerification)
	require.NotErrorIs(t, err, ErrTicketExpired)

	_, err = c.VerifySecondFactor(ctx, "tk", "111111")
	require.ErrorIs(t, err, ErrTicketExpired)

	grant, err := c.VerifySecondFactor(ctx, "tk", "123456")
	require.NoError(t, err)
	require.Equal(t, &SessionGrant{Token: "T", Premium: true}, grant)
}

func TestHTTPClient_Documents(t *testing.T) {
	var stored json.RawMessage
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Missing token"})
			return
		}
		assert.Equal(t, "/api/cards", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			if stored == nil {
				writeJSON(w, http.StatusOK, map[string]any{"encrypted_blob": map[string]any{}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"encrypted_blob": stored})
		case http.MethodPost:
			var in struct {
				Blob json.RawMessage `json:"encrypted_blob"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			stored = in.Blob
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		}
	}))
	ctx := context.Background()

	doc, err := c.FetchDocument(ctx, "T", models.KindCards)
	require.NoError(t, err)
	require.Empty(t, doc.Items)

	in := &models.Document{Items: []models.Item{{ID: "c1", Fields: map[string]cryptox.Field{
		"cardNumber": cryptox.Encrypted(cryptox.EncryptedField{IV: "aXY=", Cipher: "Yw=="}),
	}}}}
	require.NoError(t, c.SaveDocument(ctx, "T", models.KindCards, in))

	doc, err = c.FetchDocument(ctx, "T", models.KindCards)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	require.True(t, doc.Items[0].Fields["cardNumber"].IsEncrypted())

	_, err = c.FetchDocument(ctx, "expired", models.KindCards)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestHTTPClient_RetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
	}))

	enabled, err := c.SecondFactorStatus(context.Background(), "T")
	require.NoError(t, err)
	require.True(t, enabled)
	require.EqualValues(t, 3, calls.Load())
}

func TestHTTPClient_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := c.Register(context.Background(), "a@b.c", "s", []byte{1})
	require.ErrorIs(t, err, ErrUnavailable)
	require.EqualValues(t, 1, calls.Load())
}

// dropFirstConnection closes the connection on the first request without a
// response, as a proxy dropping the reply would.
func dropFirstConnection(t *testing.T, calls *atomic.Int32, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = io.Copy(io.Discard, r.Body)
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		next.ServeHTTP(w, r)
	})
}

func TestHTTPClient_DoesNotResendPostAfterTransportFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestHTTPClient(t, dropFirstConnection(t, &calls, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid or expired ticket"})
	})))

	_, err := c.VerifySecondFactor(context.Background(), "ticket-1", "123456")
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotErrorIs(t, err, ErrTicketExpired)
	require.EqualValues(t, 1, calls.Load())
}

func TestHTTPClient_RetriesGetAfterTransportFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestHTTPClient(t, dropFirstConnection(t, &calls, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
	})))

	enabled, err := c.SecondFactorStatus(context.Background(), "T")
	require.NoError(t, err)
	require.True(t, enabled)
	require.EqualValues(t, 2, calls.Load())
}

func TestHTTPClient_Premium(t *testing.T) {
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/premium/verifyPremium":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["key"] != "GOOD" {
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "Invalid premium key"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"premiumToken": "P", "is_premium": true})
		case "/api/premium/status":
			writeJSON(w, http.StatusOK, map[string]bool{"isPremium": true})
		case "/api/premium/disable":
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User is not premium"})
		}
	}))
	ctx := context.Background()

	grant, err := c.VerifyPremium(ctx, "T", "GOOD")
	require.NoError(t, err)
	require.Equal(t, "P", grant.Token)

	_, err = c.VerifyPremium(ctx, "T", "BAD")
	require.ErrorIs(t, err, ErrForbidden)

	premium, err := c.PremiumStatus(ctx, "T")
	require.NoError(t, err)
	require.True(t, premium)

	err = c.DisablePremium(ctx, "T", []byte{1})
	require.ErrorIs(t, err, ErrBadRequest)
	require.ErrorContains(t, err, "User is not premium")
}

func TestHTTPClient_Ping(t *testing.T) {
	c := newTestHTTPClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}))
	require.NoError(t, c.Ping(context.Background()))
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		code int
		msg  string
		want error
	}{
		{http.StatusUnauthorized, "", ErrSessionExpired},
		{http.StatusForbidden, "Invalid password", ErrForbidden},
		{http.StatusNotFound, "", ErrNotFound},
		{http.StatusBadGateway, "", ErrUnavailable},
		{http.StatusTooManyRequests, "", ErrUnavailable},
		{http.StatusBadRequest, "Invalid credentials", ErrInvalidCredentials},
		{http.StatusBadRequest, "Email already exists", ErrAlreadyExists},
		{http.StatusBadRequest, "Invalid or expired code", ErrSecondFactorVerification},
		{http.StatusBadRequest, "Missing encrypted_blob", ErrBadRequest},
	}
	for _, tt := range tests {
		require.ErrorIs(t, mapStatus(tt.code, tt.msg), tt.want, "%d %q", tt.code, tt.msg)
	}
}

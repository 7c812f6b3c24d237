package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
)

// LoginResult is what the first login step returns: either a session or a
// ticket for the second factor.
type LoginResult struct {
	Token                string
	Premium              bool
	SecondFactorRequired bool
	Ticket               string
}

type SessionGrant struct {
	Token   string
	Premium bool
}

type SecondFactorSetup struct {
	Secret     string
	OTPAuthURL string
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, salt string, proof []byte) error
	GetSalt(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email string, proof []byte) (*LoginResult, error)
	VerifySecondFactor(ctx context.Context, ticket, otp string) (*SessionGrant, error)

	FetchDocument(ctx context.Context, token string, kind models.Kind) (*models.Document, error)
	SaveDocument(ctx context.Context, token string, kind models.Kind, doc *models.Document) error

	SetupSecondFactor(ctx context.Context, token string) (*SecondFactorSetup, error)
	EnableSecondFactor(ctx context.Context, token, otp string) error
	SecondFactorStatus(ctx context.Context, token string) (bool, error)
	DisableSecondFactor(ctx context.Context, token string, proof []byte) error

	VerifyPremium(ctx context.Context, token, key string) (*SessionGrant, error)
	PremiumStatus(ctx context.Context, token string) (bool, error)
	DisablePremium(ctx context.Context, token string, proof []byte) error
}

// decodeBlob accepts the stored document either as a JSON object or as a
// JSON string holding one. Absent blobs decode to an empty document.
func decodeBlob(raw json.RawMessage) (*models.Document, error) {
	doc := &models.Document{}
	if len(raw) == 0 || string(raw) == "null" {
		return doc, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode blob: %w", err)
		}
		if s == "" {
			return doc, nil
		}
		raw = json.RawMessage(s)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode blob: %w", err)
	}
	return doc, nil
}

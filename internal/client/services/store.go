package services

import (
	"context"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
)

// Store persists encrypted documents. Fetch reports a missing document with
// client.ErrNotFound. Save replaces the stored document entirely.
type Store interface {
	Fetch(ctx context.Context, kind models.Kind) (*models.Document, error)
	Save(ctx context.Context, kind models.Kind, doc *models.Document) error
}

type DocumentClient interface {
	FetchDocument(ctx context.Context, token string, kind models.Kind) (*models.Document, error)
	SaveDocument(ctx context.Context, token string, kind models.Kind, doc *models.Document) error
}

// TokenSource yields the current bearer token; *Session implements it.
type TokenSource interface {
	Token() string
}

// RemoteStore binds a backend client to the session token.
type RemoteStore struct {
	client DocumentClient
	tokens TokenSource
}

func NewRemoteStore(c DocumentClient, tokens TokenSource) *RemoteStore {
	return &RemoteStore{client: c, tokens: tokens}
}

func (s *RemoteStore) Fetch(ctx context.Context, kind models.Kind) (*models.Document, error) {
	return s.client.FetchDocument(ctx, s.tokens.Token(), kind)
}

func (s *RemoteStore) Save(ctx context.Context, kind models.Kind, doc *models.Document) error {
	return s.client.SaveDocument(ctx, s.tokens.Token(), kind, doc)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/documents"
)

var documentKinds = map[string]bool{"vault": true, "cards": true}

// DocumentService keeps one encrypted document per user and kind. It never
// looks inside beyond checking that the blob is a JSON object.
type DocumentService struct {
	store  documents.Repository
	logger logging.Logger
}

func NewDocumentService(store documents.Repository, logger logging.Logger) *DocumentService {
	return &DocumentService{store: store, logger: logger.With("module", "documents")}
}

// Get yields common.ErrorNotFound until the first Put.
func (s *DocumentService) Get(ctx context.Context, userID, kind string) ([]byte, error) {
	if !documentKinds[kind] {
		return nil, fmt.Errorf("%w: unknown document kind %q", common.ErrorValidation, kind)
	}
	return s.store.Get(ctx, userID, kind)
}

// Put replaces the whole document.
func (s *DocumentService) Put(ctx context.Context, userID, kind string, blob []byte) error {
	if !documentKinds[kind] {
		return fmt.Errorf("%w: unknown document kind %q", common.ErrorValidation, kind)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(blob, &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: document must be a JSON object", common.ErrorValidation)
	}

	if err := s.store.Put(ctx, userID, kind, blob); err != nil {
		return fmt.Errorf("error storing document: %w", err)
	}
	return nil
}

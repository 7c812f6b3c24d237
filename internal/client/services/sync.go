package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/codec"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/timex"
)

var (
	ErrNotLoaded    = errors.New("document not loaded")
	ErrItemNotFound = errors.New("item not found")
	ErrDuplicateID  = errors.New("item id already exists")
)

const autosaveTimeout = 30 * time.Second

// Policy controls when mutations reach the server. Debounce is the quiet
// period after the last mutation; MinInterval is the minimum spacing
// between upload starts.
type Policy struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

func DefaultPolicy(kind models.Kind) Policy {
	if kind == models.KindCards {
		return Policy{Debounce: time.Second, MinInterval: 5 * time.Second}
	}
	return Policy{Debounce: 2 * time.Second, MinInterval: 3 * time.Second}
}

type EngineOption func(*Engine)

// WithSessionExpiredHandler installs fn to run when an autosave is rejected
// because the session token is no longer valid.
func WithSessionExpiredHandler(fn func()) EngineOption {
	return func(e *Engine) { e.onSessionExpired = fn }
}

// Engine keeps the decrypted working set of one document and writes it back,
// encrypted, after mutations settle.
type Engine struct {
	kind             models.Kind
	store            Store
	cipher           codec.FieldCipher
	policy           Policy
	logger           logging.Logger
	clock            timex.Clock
	onSessionExpired func()

	mu         sync.Mutex
	loaded     bool
	doc        models.Document
	timer      timex.Timer
	gen        uint64
	lastUpload time.Time
}

func NewEngine(kind models.Kind, store Store, key codec.FieldCipher, policy Policy, logger logging.Logger, clock timex.Clock, opts ...EngineOption) *Engine {
	e := &Engine{
		kind:   kind,
		store:  store,
		cipher: key,
		policy: policy,
		logger: logger.With("module", "sync", "kind", string(kind)),
		clock:  clock,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Kind() models.Kind { return e.kind }

func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Load fetches the document and replaces the working set. A document that
// fails to decrypt leaves the engine unloaded; nothing is written back.
func (e *Engine) Load(ctx context.Context) error {
	doc, err := e.store.Fetch(ctx, e.kind)
	switch {
	case errors.Is(err, client.ErrNotFound):
		doc = &models.Document{}
	case err != nil:
		return fmt.Errorf("fetch %s: %w", e.kind, err)
	}

	working := *doc
	if codec.NeedsDecryption(working) {
		working, err = codec.DecryptDocument(e.kind, working, e.cipher)
		if err != nil {
			e.mu.Lock()
			e.loaded = false
			e.mu.Unlock()
			e.logger.Error(ctx, "document could not be decrypted", "error", err)
			return fmt.Errorf("decrypt %s: %w", e.kind, err)
		}
	}

	now := e.clock.Now()
	for i := range working.Items {
		working.Items[i] = models.Normalize(e.kind, working.Items[i], now)
	}

	e.mu.Lock()
	e.doc = working
	e.loaded = true
	e.mu.Unlock()

	e.logger.Info(ctx, "document loaded", "items", len(working.Items))
	return nil
}

// Items returns a copy of the working set.
func (e *Engine) Items() []models.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone().Items
}

func (e *Engine) Get(id string) (models.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.doc.Find(id)
	if i < 0 {
		return models.Item{}, false
	}
	return e.doc.Items[i].Clone(), true
}

func (e *Engine) Add(it models.Item) (models.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return models.Item{}, ErrNotLoaded
	}

	now := e.clock.Now()
	it.CreatedAt, it.UpdatedAt = now, now
	it = models.Normalize(e.kind, it, now)
	if e.doc.Find(it.ID) >= 0 {
		return models.Item{}, fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
	}

	e.doc.Items = append(e.doc.Items, it)
	e.scheduleLocked()
	return it.Clone(), nil
}

// Update replaces the fields of the item with the same id. The creation
// time of the stored item is kept.
func (e *Engine) Update(it models.Item) (models.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return models.Item{}, ErrNotLoaded
	}
	i := e.doc.Find(it.ID)
	if i < 0 {
		return models.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, it.ID)
	}

	now := e.clock.Now()
	it.CreatedAt = e.doc.Items[i].CreatedAt
	it.UpdatedAt = now
	it = models.Normalize(e.kind, it, now)

	e.doc.Items[i] = it
	e.scheduleLocked()
	return it.Clone(), nil
}

func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return ErrNotLoaded
	}
	i := e.doc.Find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	e.doc.Items = append(e.doc.Items[:i], e.doc.Items[i+1:]...)
	e.scheduleLocked()
	return nil
}

// Save uploads the working set now, cancelling any pending autosave. When
// the upload fails an autosave is queued again, except for an expired
// session.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	e.cancelTimerLocked()
	snapshot := e.doc.Clone()
	e.lastUpload = e.clock.Now()
	e.mu.Unlock()

	err := e.upload(ctx, snapshot)
	if err == nil || errors.Is(err, client.ErrSessionExpired) {
		return err
	}

	e.mu.Lock()
	if e.loaded && e.timer == nil {
		e.scheduleLocked()
	}
	e.mu.Unlock()
	return err
}

// Close cancels any pending autosave and drops the working set.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimerLocked()
	e.loaded = false
	e.doc = models.Document{}
}

func (e *Engine) cancelTimerLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) scheduleLocked() {
	e.cancelTimerLocked()
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.policy.Debounce, func() { e.fire(gen) })
}

// fire runs when the debounce timer elapses. Uploads closer together than
// MinInterval are pushed back, never skipped.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.loaded {
		e.mu.Unlock()
		return
	}

	now := e.clock.Now()
	if !e.lastUpload.IsZero() {
		if next := e.lastUpload.Add(e.policy.MinInterval); now.Before(next) {
			e.timer = e.clock.AfterFunc(next.Sub(now), func() { e.fire(gen) })
			e.mu.Unlock()
			return
		}
	}

	e.timer = nil
	snapshot := e.doc.Clone()
	e.lastUpload = now
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()

	err := e.upload(ctx, snapshot)
	if err == nil {
		return
	}
	e.logger.Error(ctx, "autosave failed", "error", err)
	if errors.Is(err, client.ErrSessionExpired) && e.onSessionExpired != nil {
		e.onSessionExpired()
	}
}

func (e *Engine) upload(ctx context.Context, snapshot models.Document) error {
	encrypted, err := codec.EncryptDocument(e.kind, snapshot, e.cipher)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", e.kind, err)
	}
	if err := e.store.Save(ctx, e.kind, &encrypted); err != nil {
		return fmt.Errorf("save %s: %w", e.kind, err)
	}
	e.logger.Info(ctx, "document saved", "items", len(snapshot.Items))
	return nil
}

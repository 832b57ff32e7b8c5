// Package engine owns the customer-state snapshot and keeps it in sync with
// the configured source of truth. It is the only writer of the snapshot:
// transaction events, explicit refreshes and purchases all funnel into one
// serialized replace-persist-notify transition, while entitlement reads go
// through a lock-free pointer and never touch network or disk.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/cache"
	"github.com/dmitrijs2005/subkeeper/internal/common"
	"github.com/dmitrijs2005/subkeeper/internal/logging"
	"github.com/dmitrijs2005/subkeeper/internal/mode"
	"github.com/dmitrijs2005/subkeeper/internal/models"
	"github.com/dmitrijs2005/subkeeper/internal/normalize"
	"github.com/dmitrijs2005/subkeeper/internal/purchases"
	"github.com/dmitrijs2005/subkeeper/internal/remote"
	"github.com/google/uuid"
)

// RemoteFactory builds the transport for a remote-authoritative mode.
type RemoteFactory func(m mode.OperatingMode) remote.Client

// Engine is the synchronization engine. Create one per session with New,
// call Configure before anything else, and Close when done.
type Engine struct {
	cache     cache.Repository
	purchases purchases.Client
	log       logging.Logger

	now          func() time.Time
	newRemote    RemoteFactory
	timeout      time.Duration
	refreshEvery time.Duration

	// mu serializes every state transition; state carries the last known
	// snapshot for lock-free reads. A nil pointer means no snapshot has
	// been resolved or loaded yet.
	mu     sync.Mutex
	router *mode.Router
	remote remote.Client
	state  atomic.Pointer[models.CustomerState]

	lmu       sync.Mutex
	listeners map[int]func(*models.CustomerState)
	nextID    int

	// cfgMu serializes whole configure/close transitions, from stopping the
	// previous background listener through starting the next one. Without it
	// two concurrent Configures could both observe no running listener and
	// the second would orphan the first's cancel handle.
	cfgMu    sync.Mutex
	bgMu     sync.Mutex
	bgCancel context.CancelFunc
	bgDone   chan struct{}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the evaluation clock. Tests use it to move time past
// entitlement expirations without sleeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRemoteFactory replaces how the remote transport is built from an
// operating mode.
func WithRemoteFactory(f RemoteFactory) Option {
	return func(e *Engine) { e.newRemote = f }
}

// WithRequestTimeout sets the per-request timeout handed to the default
// remote transport.
func WithRequestTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithRefreshInterval enables a periodic background refresh. Zero disables
// it.
func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) { e.refreshEvery = d }
}

// New builds an engine over the given snapshot cache and purchase
// collaborator. The engine is inert until Configure is called.
func New(repo cache.Repository, store purchases.Client, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		cache:     repo,
		purchases: store,
		log:       log,
		now:       time.Now,
		router:    mode.NewRouter(),
		listeners: make(map[int]func(*models.CustomerState)),
	}
	e.newRemote = func(m mode.OperatingMode) remote.Client {
		return remote.NewRestyClient(m.Endpoint, m.APIKey, m.CatalogID, e.timeout)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure sets the operating mode, replacing any previous one. The
// previous background listener is stopped and drained first, so an update
// already mid-processing completes under the old mode before the new one
// takes effect. An empty AppUserID gets a generated anonymous identity.
//
// The cached snapshot for the identity, if any, becomes the last known
// state and is delivered to subscribers; a cache miss or corrupt entry
// leaves the engine without a snapshot until the first resolution.
func (e *Engine) Configure(ctx context.Context, m mode.OperatingMode) error {
	switch m.Kind {
	case mode.KindLocal:
	case mode.KindRemote:
		if m.Endpoint == "" || m.APIKey == "" {
			return fmt.Errorf("remote mode requires an endpoint and an api key")
		}
	default:
		return fmt.Errorf("unknown operating mode %v", m.Kind)
	}
	if m.AppUserID == "" {
		m.AppUserID = anonymousID()
	}

	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()

	e.stopBackground()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.router.Configure(m)
	switch m.Kind {
	case mode.KindRemote:
		e.remote = e.newRemote(m)
	case mode.KindLocal:
		e.remote = nil
	}

	s, err := e.cache.Load(ctx, m.AppUserID)
	if err != nil {
		// cache read failures degrade to "no cached value"
		e.log.Warn(ctx, "cache read failed, starting without snapshot", "app_user_id", m.AppUserID, "error", err)
		s = nil
	}
	e.state.Store(s)
	if s != nil {
		e.notify(s)
	}

	e.log.Info(ctx, "configured", "mode", m.Kind.String(), "app_user_id", m.AppUserID)
	e.startBackground()
	return nil
}

// OnTransactionEvent applies one transaction reported by the store. In
// local mode the whole entitlement map is recomputed from the store's
// complete current transaction set, because a single event cannot reveal
// revocations of other entitlements. In remote mode the event's proof is
// submitted and the server's response adopted wholesale.
func (e *Engine) OnTransactionEvent(ctx context.Context, raw models.RawTransaction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyTransactionLocked(ctx, raw)
}

func (e *Engine) applyTransactionLocked(ctx context.Context, raw models.RawTransaction) error {
	m, _, ok := e.router.Current()
	if !ok {
		return common.ErrNotConfigured
	}

	switch m.Kind {
	case mode.KindLocal:
		return e.recomputeLocked(ctx, m)
	case mode.KindRemote:
		s, err := e.remote.SubmitTransaction(ctx, m.AppUserID, raw.ProductID, raw.Proof)
		if err != nil {
			return err
		}
		e.replaceStateLocked(ctx, s)
		return nil
	default:
		return fmt.Errorf("unknown operating mode %v", m.Kind)
	}
}

// recomputeLocked rebuilds the snapshot from the store's complete current
// transaction set.
func (e *Engine) recomputeLocked(ctx context.Context, m mode.OperatingMode) error {
	raws, err := e.purchases.CurrentEntitlements(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current entitlements: %w", err)
	}

	now := e.now()
	next := &models.CustomerState{
		AppUserID:       m.AppUserID,
		Entitlements:    normalize.Entitlements(raws, now),
		AllTransactions: normalize.Records(raws, now),
	}
	e.replaceStateLocked(ctx, next)
	return nil
}

// replaceStateLocked is the single transition every update funnels through:
// swap the snapshot, persist it, fan out to subscribers. A persistence
// failure is logged and swallowed — the in-memory snapshot is still valid
// for the session. Exactly one notification per call.
func (e *Engine) replaceStateLocked(ctx context.Context, s *models.CustomerState) {
	if s.Entitlements == nil {
		s.Entitlements = make(map[string]models.EntitlementRecord)
	}
	if s.FirstSeenAt.IsZero() {
		if prev := e.state.Load(); prev != nil && !prev.FirstSeenAt.IsZero() {
			s.FirstSeenAt = prev.FirstSeenAt
		} else {
			s.FirstSeenAt = e.now().UTC()
		}
	}

	e.state.Store(s)

	if err := e.cache.Save(ctx, s); err != nil {
		e.log.Warn(ctx, "failed to persist snapshot", "app_user_id", s.AppUserID, "error", err)
	}

	e.notify(s)
}

// Refresh pulls a fresh snapshot from the configured source.
//
// Remote mode falls back to the last known state on a network failure (the
// stale value is returned as-is, with no redundant re-persist or
// re-notification). A protocol failure never falls back: a schema mismatch
// undermines the trust basis of the cached data too, so it propagates.
func (e *Engine) Refresh(ctx context.Context) (*models.CustomerState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, _, ok := e.router.Current()
	if !ok {
		return nil, common.ErrNotConfigured
	}

	switch m.Kind {
	case mode.KindLocal:
		if err := e.recomputeLocked(ctx, m); err != nil {
			return nil, err
		}
		return e.state.Load(), nil
	case mode.KindRemote:
		s, err := e.remote.FetchState(ctx, m.AppUserID)
		if err != nil {
			if errors.Is(err, common.ErrNetwork) {
				if last := e.state.Load(); last != nil {
					e.log.Warn(ctx, "refresh failed, serving last known state", "app_user_id", m.AppUserID, "error", err)
					return last, nil
				}
			}
			return nil, err
		}
		e.replaceStateLocked(ctx, s)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown operating mode %v", m.Kind)
	}
}

// Purchase executes a purchase through the store collaborator and applies
// the resulting transaction. Cancellation and store failures propagate
// typed; nothing is replaced, persisted or notified on failure.
func (e *Engine) Purchase(ctx context.Context, productID string) (models.TransactionRecord, error) {
	_, gen, ok := e.router.Current()
	if !ok {
		return models.TransactionRecord{}, common.ErrNotConfigured
	}

	// the store round trip runs outside the engine lock so it cannot stall
	// concurrent refreshes or update-stream events
	raw, err := e.purchases.Purchase(ctx, productID)
	if err != nil {
		return models.TransactionRecord{}, err
	}
	rec := normalize.Record(raw, e.now())

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, cur, ok := e.router.Current(); !ok || cur != gen {
		// reconfigured while the store call was in flight; the transaction
		// will resurface through the new mode's own resolution paths
		return models.TransactionRecord{}, fmt.Errorf("configuration replaced during purchase of %q", productID)
	}
	if err := e.applyTransactionLocked(ctx, raw); err != nil {
		return models.TransactionRecord{}, err
	}
	return rec, nil
}

// GetCustomerInfo returns the current snapshot, refreshing first if none
// has been resolved yet.
func (e *Engine) GetCustomerInfo(ctx context.Context) (*models.CustomerState, error) {
	if s := e.state.Load(); s != nil {
		return s, nil
	}
	return e.Refresh(ctx)
}

// IsEntitled reports whether the entitlement currently grants access. It is
// a pure read of the last known snapshot against the evaluation clock:
// false when unconfigured, absent, inactive or expired. Never blocks.
func (e *Engine) IsEntitled(id string) bool {
	s := e.state.Load()
	if s == nil {
		return false
	}
	ent, ok := s.Entitlements[id]
	if !ok {
		return false
	}
	return ent.GrantedAt(e.now())
}

// ClearCached deletes the persisted snapshot for the configured identity.
// The in-memory snapshot is kept; it will be re-persisted on the next
// update.
func (e *Engine) ClearCached(ctx context.Context) error {
	m, _, ok := e.router.Current()
	if !ok {
		return common.ErrNotConfigured
	}
	return e.cache.Delete(ctx, m.AppUserID)
}

// Close stops the background listener and waits for it to finish. The
// engine can be reconfigured afterwards.
func (e *Engine) Close() error {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	e.stopBackground()
	return nil
}

func anonymousID() string {
	return "$anon:" + uuid.NewString()
}

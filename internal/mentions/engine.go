package mentions

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatterdash/internal/models"
)

// Fetcher is the slice of the chat-log client the engine depends on
type Fetcher interface {
	FetchMentions(ctx context.Context, identity string, since *time.Time) ([]models.MentionRecord, error)
	HideMention(ctx context.Context, id int64) error
}

// CacheStore is the durable store the engine persists to
type CacheStore interface {
	LoadCache() []models.MentionRecord
	SaveCache(cache []models.MentionRecord) error
	ClearCache() error
	LoadUserConfig() (models.UserConfig, bool)
	SaveUserConfig(cfg models.UserConfig) error
}

// Engine owns the in-memory mention cache and the user config for one
// dashboard session, and reconciles them with the chat-log service.
// Sync, Hide and SaveConfig serialize their read-mutate-persist cycles
// behind one mutex.
type Engine struct {
	mu     sync.Mutex
	client Fetcher
	store  CacheStore

	cache  []models.MentionRecord // timestamp descending
	config models.UserConfig

	// alertPulse is latched by a sync that should alert and cleared by
	// ConsumeAlertPulse, so the presentation layer plays the sound at
	// most once per batch.
	alertPulse bool
}

// NewEngine builds an engine seeded from the durable store
func NewEngine(client Fetcher, store CacheStore) *Engine {
	cfg, _ := store.LoadUserConfig()
	return &Engine{
		client: client,
		store:  store,
		cache:  sortMentions(store.LoadCache()),
		config: cfg,
	}
}

// Cursor returns the resumption cursor for a cache: the maximum timestamp
// among visible (not hidden) records, or nil when none are visible. Hidden
// records are excluded so the cursor never skips records the server still
// considers unread.
func Cursor(cache []models.MentionRecord) *time.Time {
	var cursor *time.Time
	for i := range cache {
		if cache[i].Hidden {
			continue
		}
		ts := cache[i].Timestamp
		if cursor == nil || ts.After(*cursor) {
			cursor = &ts
		}
	}
	return cursor
}

// Merge folds a server batch into a cache and returns the merged cache
// sorted by timestamp descending. Neither input is modified. Exactly one
// record per id survives; for records already present the server copy
// wins on every field except Hidden, which stays true once set on either
// side.
func Merge(cache, batch []models.MentionRecord) []models.MentionRecord {
	merged := make([]models.MentionRecord, len(cache))
	copy(merged, cache)

	index := make(map[int64]int, len(merged))
	for i := range merged {
		index[merged[i].ID] = i
	}

	for _, incoming := range batch {
		if i, exists := index[incoming.ID]; exists {
			hidden := merged[i].Hidden || incoming.Hidden
			merged[i] = incoming
			merged[i].Hidden = hidden
		} else {
			index[incoming.ID] = len(merged)
			merged = append(merged, incoming)
		}
	}

	return sortMentions(merged)
}

func sortMentions(cache []models.MentionRecord) []models.MentionRecord {
	sort.SliceStable(cache, func(i, j int) bool {
		if !cache[i].Timestamp.Equal(cache[j].Timestamp) {
			return cache[i].Timestamp.After(cache[j].Timestamp)
		}
		return cache[i].ID > cache[j].ID
	})
	return cache
}

// Sync runs one incremental synchronization cycle: fetch everything newer
// than the cursor, merge the batch into the cache, persist, and report
// whether the alert should fire. A fetch failure leaves the cache exactly
// as it was.
func (e *Engine) Sync(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.config.Identity == "" {
		return false, nil
	}

	batch, err := e.client.FetchMentions(ctx, e.config.Identity, Cursor(e.cache))
	if err != nil {
		return false, err
	}

	e.cache = Merge(e.cache, batch)
	if err := e.store.SaveCache(e.cache); err != nil {
		return false, err
	}

	shouldAlert := len(batch) > 0 && e.config.AlertEnabled
	if shouldAlert {
		e.alertPulse = true
	}
	return shouldAlert, nil
}

// Visible returns the timestamp-descending view of unread mentions for
// the presentation layer.
func (e *Engine) Visible() []models.MentionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	visible := make([]models.MentionRecord, 0, len(e.cache))
	for _, m := range e.cache {
		if m.IsVisible() {
			visible = append(visible, m)
		}
	}
	return visible
}

// ConsumeAlertPulse reports a pending alert and clears it, so each batch
// of new mentions plays the alert exactly once.
func (e *Engine) ConsumeAlertPulse() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	pulse := e.alertPulse
	e.alertPulse = false
	return pulse
}

// Config returns the current user preferences
func (e *Engine) Config() models.UserConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SaveConfig persists new user preferences. Changing the identity throws
// away the cached mention feed, so the next Sync is a full resync of the
// new identity's history.
func (e *Engine) SaveConfig(cfg models.UserConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg.Normalize()

	if cfg.Identity != e.config.Identity {
		e.cache = nil
		if err := e.store.ClearCache(); err != nil {
			return err
		}
		e.alertPulse = false
	}

	if err := e.store.SaveUserConfig(cfg); err != nil {
		return err
	}
	e.config = cfg
	return nil
}

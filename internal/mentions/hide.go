package mentions

import (
	"context"
)

// Hide acknowledges a mention: the local record is marked hidden and
// persisted first, then the server-side hide is attempted. The local
// state is never rolled back on a failed hide request; the returned
// *chatlog.HideError is a non-fatal notice for the UI. Hiding an id
// that is not cached is a no-op.
func (e *Engine) Hide(ctx context.Context, id int64) error {
	e.mu.Lock()

	found := false
	for i := range e.cache {
		if e.cache[i].ID == id {
			found = true
			if e.cache[i].Hidden {
				break
			}
			e.cache[i].Hidden = true
			if err := e.store.SaveCache(e.cache); err != nil {
				// Local durability failed; undo the in-memory flip so
				// memory and store stay consistent.
				e.cache[i].Hidden = false
				e.mu.Unlock()
				return err
			}
			break
		}
	}

	e.mu.Unlock()

	if !found {
		return nil
	}

	// Best-effort server-side hide, outside the cache lock; local-first
	// responsiveness over server-confirmed deletion. A lost request is
	// reconciled by a later full resync.
	return e.client.HideMention(ctx, id)
}

package models

import "time"

// MentionRecord is a single mention notification from the chat-log service.
// Records are identified by ID; the server owns every field except Hidden,
// which is client-local acknowledgment state.
type MentionRecord struct {
	// ID is assigned by the server and unique within a user's mention feed
	ID int64 `json:"id"`

	// Timestamp is when the mentioning message was posted
	Timestamp time.Time `json:"timestamp"`

	// Channel is the chat channel the mention came from ("trade", "giveaways", ...)
	Channel string `json:"channel"`

	// Content is the pre-sanitized message payload. It is opaque to the
	// sync engine and rendered as-is by the dashboard.
	Content string `json:"content"`

	// Hidden marks the mention as read/acknowledged. Once set locally it
	// never reverts to false, regardless of what the server re-sends.
	Hidden bool `json:"hidden"`
}

// IsVisible reports whether the record belongs in the dashboard view.
func (m *MentionRecord) IsVisible() bool {
	return !m.Hidden
}

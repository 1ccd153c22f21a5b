package models

// UserConfig is the dashboard user's saved preferences. It lives in the
// cache store next to the mention cache and is persisted immediately on
// every save action.
type UserConfig struct {
	// Identity is the chat name matched against the mention feed.
	// Changing it invalidates the entire mention cache.
	Identity string `json:"identity"`

	// AlertEnabled controls whether a successful sync with new results
	// fires the audible alert pulse.
	AlertEnabled bool `json:"alert_enabled"`

	// PollIntervalSeconds is the mention-sync period.
	PollIntervalSeconds int `json:"poll_interval_seconds"`
}

// DefaultUserConfig returns the preferences used before the user has
// saved anything.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Identity:            "",
		AlertEnabled:        true,
		PollIntervalSeconds: 30,
	}
}

// Normalize clamps invalid values back to usable defaults.
func (c *UserConfig) Normalize() {
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = DefaultUserConfig().PollIntervalSeconds
	}
}

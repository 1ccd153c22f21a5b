package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatterdash/internal/chatlog"
	"chatterdash/internal/mentions"
	"chatterdash/internal/models"
)

type stubFetcher struct {
	batch    []models.MentionRecord
	fetchErr error
	hideErr  error
}

func (f *stubFetcher) FetchMentions(ctx context.Context, identity string, since *time.Time) ([]models.MentionRecord, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.batch, nil
}

func (f *stubFetcher) HideMention(ctx context.Context, id int64) error {
	return f.hideErr
}

type stubStore struct {
	cache []models.MentionRecord
	cfg   models.UserConfig
}

func (s *stubStore) LoadCache() []models.MentionRecord { return s.cache }

func (s *stubStore) SaveCache(cache []models.MentionRecord) error {
	s.cache = cache
	return nil
}

func (s *stubStore) ClearCache() error {
	s.cache = nil
	return nil
}

func (s *stubStore) LoadUserConfig() (models.UserConfig, bool) { return s.cfg, true }

func (s *stubStore) SaveUserConfig(cfg models.UserConfig) error {
	s.cfg = cfg
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Warning string          `json:"warning"`
}

func setupTest(t *testing.T, fetcher *stubFetcher, store *stubStore) (*gin.Engine, *[]int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := mentions.NewEngine(fetcher, store)
	restarts := &[]int{}
	router := SetupRouter(engine, func(seconds int) {
		*restarts = append(*restarts, seconds)
	}, nil)
	return router, restarts
}

func doRequest(router *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func defaultStore() *stubStore {
	return &stubStore{
		cfg: models.UserConfig{
			Identity:            "tester",
			AlertEnabled:        true,
			PollIntervalSeconds: 30,
		},
	}
}

func TestRouter_Health(t *testing.T) {
	router, _ := setupTest(t, &stubFetcher{}, defaultStore())

	w, env := doRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRouter_GetMentions(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := defaultStore()
	store.cache = []models.MentionRecord{
		{ID: 2, Timestamp: ts.Add(time.Minute), Channel: "trade", Content: "b"},
		{ID: 1, Timestamp: ts, Channel: "trade", Content: "a", Hidden: true},
	}
	router, _ := setupTest(t, &stubFetcher{}, store)

	w, env := doRequest(router, http.MethodGet, "/api/mentions", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var got []models.MentionRecord
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestRouter_HideMention(t *testing.T) {
	t.Run("hides_and_reports_success", func(t *testing.T) {
		store := defaultStore()
		store.cache = []models.MentionRecord{{ID: 1, Channel: "trade"}}
		router, _ := setupTest(t, &stubFetcher{}, store)

		w, env := doRequest(router, http.MethodPost, "/api/mentions/1/hide", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Empty(t, env.Warning)

		require.Len(t, store.cache, 1)
		assert.True(t, store.cache[0].Hidden)
	})

	t.Run("failed_server_hide_is_a_warning_not_an_error", func(t *testing.T) {
		store := defaultStore()
		store.cache = []models.MentionRecord{{ID: 1, Channel: "trade"}}
		fetcher := &stubFetcher{hideErr: &chatlog.HideError{MentionID: 1, Status: 500}}
		router, _ := setupTest(t, fetcher, store)

		w, env := doRequest(router, http.MethodPost, "/api/mentions/1/hide", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.Warning)

		// local hide stuck regardless
		require.Len(t, store.cache, 1)
		assert.True(t, store.cache[0].Hidden)
	})

	t.Run("bad_id_is_rejected", func(t *testing.T) {
		router, _ := setupTest(t, &stubFetcher{}, defaultStore())

		w, env := doRequest(router, http.MethodPost, "/api/mentions/abc/hide", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	})
}

func TestRouter_AlertPulse(t *testing.T) {
	fetcher := &stubFetcher{batch: []models.MentionRecord{{ID: 1, Channel: "trade"}}}
	router, _ := setupTest(t, fetcher, defaultStore())

	_, env := doRequest(router, http.MethodPost, "/api/sync", nil)
	require.True(t, env.Success)

	_, env = doRequest(router, http.MethodGet, "/api/alert", nil)
	var pulse struct {
		Alert bool `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pulse))
	assert.True(t, pulse.Alert)

	// consumed: second poll is quiet
	_, env = doRequest(router, http.MethodGet, "/api/alert", nil)
	require.NoError(t, json.Unmarshal(env.Data, &pulse))
	assert.False(t, pulse.Alert)
}

func TestRouter_TriggerSync(t *testing.T) {
	t.Run("fetch_failure_maps_to_bad_gateway", func(t *testing.T) {
		fetcher := &stubFetcher{fetchErr: &chatlog.FetchError{Status: 503}}
		router, _ := setupTest(t, fetcher, defaultStore())

		w, env := doRequest(router, http.MethodPost, "/api/sync", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	})

	t.Run("returns_alert_flag_and_view", func(t *testing.T) {
		fetcher := &stubFetcher{batch: []models.MentionRecord{{ID: 1, Channel: "trade"}}}
		router, _ := setupTest(t, fetcher, defaultStore())

		w, env := doRequest(router, http.MethodPost, "/api/sync", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			ShouldAlert bool                   `json:"should_alert"`
			Mentions    []models.MentionRecord `json:"mentions"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.True(t, payload.ShouldAlert)
		assert.Len(t, payload.Mentions, 1)
	})
}

func TestRouter_Config(t *testing.T) {
	t.Run("get_returns_saved_preferences", func(t *testing.T) {
		router, _ := setupTest(t, &stubFetcher{}, defaultStore())

		w, env := doRequest(router, http.MethodGet, "/api/config", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var cfg models.UserConfig
		require.NoError(t, json.Unmarshal(env.Data, &cfg))
		assert.Equal(t, "tester", cfg.Identity)
	})

	t.Run("save_restarts_the_poll_schedule", func(t *testing.T) {
		store := defaultStore()
		router, restarts := setupTest(t, &stubFetcher{}, store)

		body, _ := json.Marshal(models.UserConfig{
			Identity:            "tester",
			AlertEnabled:        true,
			PollIntervalSeconds: 60,
		})
		w, env := doRequest(router, http.MethodPost, "/api/config", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, []int{60}, *restarts)
		assert.Equal(t, 60, store.cfg.PollIntervalSeconds)
	})

	t.Run("identity_change_clears_cached_mentions", func(t *testing.T) {
		store := defaultStore()
		store.cache = []models.MentionRecord{{ID: 1, Channel: "trade"}}
		router, _ := setupTest(t, &stubFetcher{}, store)

		body, _ := json.Marshal(models.UserConfig{
			Identity:            "someone_else",
			AlertEnabled:        true,
			PollIntervalSeconds: 30,
		})
		_, env := doRequest(router, http.MethodPost, "/api/config", body)
		require.True(t, env.Success)

		_, env = doRequest(router, http.MethodGet, "/api/mentions", nil)
		var got []models.MentionRecord
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Empty(t, got)
	})

	t.Run("malformed_body_is_rejected", func(t *testing.T) {
		router, restarts := setupTest(t, &stubFetcher{}, defaultStore())

		w, env := doRequest(router, http.MethodPost, "/api/config", []byte("{not json"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Empty(t, *restarts)
	})
}

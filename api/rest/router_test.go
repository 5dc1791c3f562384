package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kurohane/tenka/api/rest"
	"github.com/kurohane/tenka/cache"
	"github.com/kurohane/tenka/config"
	"github.com/kurohane/tenka/model"
	"github.com/kurohane/tenka/sim"
	"github.com/kurohane/tenka/testutil"
	"github.com/kurohane/tenka/worldgen"
)

type fixture struct {
	router http.Handler
	sim    *sim.Sim
	cache  cache.Cache
	store  *model.Store
	cancel context.CancelFunc
}

func setup(t *testing.T, adminKey string) *fixture {
	t.Helper()
	w, err := worldgen.Generate(worldgen.Small(7))
	require.NoError(t, err)

	c, ps := testutil.SetupTestCache(t)
	store := model.NewStore(testutil.SetupTestDB(t))

	s := sim.New(sim.Config{
		World:  w,
		Logger: zap.NewNop(),
		Sink:   cache.NewSink(c, ps, zap.NewNop()),
	})
	// Paused loop still drains host operations.
	s.SetPaused(true)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(cancel)

	cfg := &config.Config{}
	cfg.Server.AdminKey = adminKey
	cfg.Security.RateLimitRPS = 1000
	cfg.Security.RateLimitBurst = 1000

	router := rest.NewRouter(rest.Deps{
		Sim:    s,
		Store:  store,
		Cache:  c,
		PubSub: ps,
		Cfg:    cfg,
		Logger: zap.NewNop(),
	})
	return &fixture{router: router, sim: s, cache: c, store: store, cancel: cancel}
}

func (f *fixture) do(t *testing.T, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestWorld_NoSnapshotYet(t *testing.T) {
	f := setup(t, "")
	rec := f.do(t, http.MethodGet, "/api/world", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorld_AfterStep(t *testing.T) {
	f := setup(t, "")
	require.NoError(t, f.sim.Do(context.Background(), func(ctx context.Context) error {
		f.sim.Step(ctx)
		return nil
	}))

	rec := f.do(t, http.MethodGet, "/api/world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Date      string `json:"date"`
		Countries []any  `json:"countries"`
		Castles   []any  `json:"castles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotEmpty(t, view.Date)
	assert.Len(t, view.Countries, 2)
	assert.Len(t, view.Castles, 4)

	rec = f.do(t, http.MethodGet, "/api/world/day", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRanking_FallsBackToStore(t *testing.T) {
	f := setup(t, "")
	require.NoError(t, f.store.ReplaceRanking("country:power", map[string]float64{
		"Kaga": 10, "Mino": 30,
	}))

	rec := f.do(t, http.MethodGet, "/api/ranking/country:power", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Ranking []struct {
			Subject string  `json:"subject"`
			Score   float64 `json:"score"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Ranking, 2)
	assert.Equal(t, "Mino", body.Ranking[0].Subject)
}

func TestAdmin_DisabledWithoutKey(t *testing.T) {
	f := setup(t, "")
	rec := f.do(t, http.MethodGet, "/api/admin/status", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdmin_KeyChecked(t *testing.T) {
	f := setup(t, "sekrit")

	rec := f.do(t, http.MethodGet, "/api/admin/status", "", map[string]string{"X-Admin-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/status", "", map[string]string{"X-Admin-Key": "sekrit"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Paused bool   `json:"paused"`
		Date   string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Paused)
	assert.NotEmpty(t, body.Date)
}

func TestAdmin_PauseAndSpeed(t *testing.T) {
	f := setup(t, "sekrit")
	hdr := map[string]string{"X-Admin-Key": "sekrit"}

	rec := f.do(t, http.MethodPost, "/api/admin/pause", `{"paused":false}`, hdr)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.sim.Paused())

	f.sim.SetPaused(true)
	rec = f.do(t, http.MethodPost, "/api/admin/speed", `{"day_interval_ms":250}`, hdr)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/speed", `{"day_interval_ms":-1}`, hdr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_SavePersists(t *testing.T) {
	f := setup(t, "sekrit")
	rec := f.do(t, http.MethodPost, "/api/admin/save", "", map[string]string{"X-Admin-Key": "sekrit"})
	require.Equal(t, http.StatusOK, rec.Code)

	has, err := f.store.HasSave()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestControl_TakeAndRelease(t *testing.T) {
	f := setup(t, "")
	var id int64
	require.NoError(t, f.sim.Do(context.Background(), func(context.Context) error {
		id = int64(f.sim.W.Characters()[0].ID)
		return nil
	}))

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/control/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/control/%d/decisions", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"decisions":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/control/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/control/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestControl_TakeUnknownCharacter(t *testing.T) {
	f := setup(t, "")
	rec := f.do(t, http.MethodPost, "/api/control/999999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/control/zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestControl_ActionRequiresControl(t *testing.T) {
	f := setup(t, "")
	rec := f.do(t, http.MethodPost, "/api/control/1/action", `{"action":"train"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestControl_UnknownAction(t *testing.T) {
	f := setup(t, "")
	var id int64
	require.NoError(t, f.sim.Do(context.Background(), func(context.Context) error {
		id = int64(f.sim.W.Characters()[0].ID)
		return nil
	}))
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/control/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/control/%d/action", id), `{"action":"no-such"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestControl_ResolveUnknownRequest(t *testing.T) {
	f := setup(t, "")
	var id int64
	require.NoError(t, f.sim.Do(context.Background(), func(context.Context) error {
		id = int64(f.sim.W.Characters()[0].ID)
		return nil
	}))
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/control/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/control/%d/decisions/nope", id), `{"accepted":true}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvents_StreamsDaySummaries(t *testing.T) {
	f := setup(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.router.ServeHTTP(rec, req)
	}()

	// Give the subscriber time to attach, then produce a day of events.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, f.sim.Do(context.Background(), func(c context.Context) error {
		f.sim.Step(c)
		return nil
	}))

	<-done
	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "sim.day")
}

package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/calendar-bot/internal/config"
	"github.com/ykvlv/calendar-bot/internal/scheduler"
)

func TestMux_Healthz(t *testing.T) {
	srv := httptest.NewServer(newMux(prometheus.NewRegistry()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMux_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	scheduler.NewMetrics(reg)
	srv := httptest.NewServer(newMux(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "calendar_scheduler_ticks_total 0")
	assert.Contains(t, string(body), "calendar_scheduler_events_evaluated_total 0")
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := config.Config{
		StoreDriver: config.StoreSQLite,
		DBPath:      filepath.Join(t.TempDir(), "nested", "calendar.db"),
	}

	repo, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/svi-cli/internal/model"
	"github.com/sells-group/svi-cli/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	srv := httptest.NewServer(newRouter(st))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestServeHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeRuns(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunParams{Year: 2021, Level: model.LevelTract, Variables: []string{"QAGEDEP"}})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []model.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestServeRuns_LevelFilter(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, model.RunParams{Year: 2021, Level: model.LevelTract})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/runs?level=bg")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var runs []model.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.Empty(t, runs)
}

func TestServeRun_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/runs/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeResults(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunParams{Year: 2021, Level: model.LevelBlockGroup})
	require.NoError(t, err)

	want := &model.ResultTable{
		Rows: []model.ResultRow{{
			AreaID:    "482012231001",
			Variables: map[string]float64{"QAGEDEP": 0.2},
			FA:        model.Composite{Scaled: 1, Rank: 1, Percentile: 1},
			RM:        model.Composite{Scaled: 1, Rank: 1, Percentile: 1},
		}},
		Included:   []string{"QAGEDEP"},
		Concordant: true,
	}
	require.NoError(t, st.SaveResults(ctx, run.ID, want))

	resp, err := http.Get(srv.URL + "/runs/" + run.ID + "/results")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got model.ResultTable
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, *want, got)
}

func TestGracefulShutdownDrainsInFlight(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})}
	go srv.Serve(ln) //nolint:errcheck

	reqDone := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
		reqDone <- err
	}()
	<-started

	shutdownDone := make(chan error, 1)
	go func() { shutdownDone <- gracefulShutdown(srv) }()

	select {
	case err := <-shutdownDone:
		t.Fatalf("shutdown returned before the in-flight request finished: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	close(release)

	require.NoError(t, <-shutdownDone)
	require.NoError(t, <-reqDone)
}

func TestServeResults_NotFound(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunParams{Year: 2021, Level: model.LevelBlockGroup})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/runs/" + run.ID + "/results")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote is a sheet-backed remote service that also answers probes.
type fakeRemote struct {
	mu     sync.Mutex
	writes []map[string]any
	rows   map[string][]models.Record
	srv    *httptest.Server
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{rows: make(map[string][]models.Record)}

	r := chi.NewRouter()
	r.Head("/generate_204", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			utils.WriteJSON(w, models.WriteResponse{Status: models.StatusError, Message: err.Error()}, http.StatusOK)
			return
		}
		f.mu.Lock()
		f.writes = append(f.writes, body)
		f.mu.Unlock()
		utils.WriteJSON(w, models.WriteResponse{Status: models.StatusSuccess}, http.StatusOK)
	})
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		data := f.rows[req.URL.Query().Get("sheet")]
		f.mu.Unlock()
		if data == nil {
			data = []models.Record{}
		}
		utils.WriteJSON(w, models.ReadResponse{Status: models.StatusSuccess, Data: data}, http.StatusOK)
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

type harness struct {
	t      *testing.T
	dsn    string
	remote *fakeRemote
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:      t,
		dsn:    filepath.Join(t.TempDir(), "offline.db"),
		remote: newFakeRemote(t),
	}
}

func (h *harness) exec(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args,
		"--dsn", h.dsn,
		"--remote-url", h.remote.srv.URL,
		"--probe-endpoint", h.remote.srv.URL+"/generate_204",
	))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustExec(args ...string) string {
	h.t.Helper()
	out, err := h.exec(args...)
	require.NoError(h.t, err, out)
	return out
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestEnqueue_QueuesAndCaches(t *testing.T) {
	h := newHarness(t)

	out := h.mustExec("enqueue", "--collection", "musicas",
		"--payload", `{"musica":"Aleluia","cantor":"Coral"}`)
	item := decodeOutput[models.QueueItem](t, out)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.CollectionSongs, item.Operation.Collection)

	pending := decodeOutput[[]models.QueueItem](t, h.mustExec("queue"))
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)

	cached := decodeOutput[[]models.Record](t, h.mustExec("cache", "Musicas"))
	require.Len(t, cached, 1)
	assert.Equal(t, "Aleluia", cached[0]["musica"])
}

func TestEnqueue_InvalidPayload(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("enqueue", "--collection", "Musicas", "--payload", "{not json")
	require.Error(t, err)
}

func TestEnqueue_CollectionRequired(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("enqueue", "--payload", `{"musica":"x"}`)
	require.Error(t, err)
}

func TestSync_ReplaysQueueInOrder(t *testing.T) {
	h := newHarness(t)
	h.mustExec("enqueue", "--collection", "Musicas", "--payload", `{"musica":"Primeira","cantor":"A"}`)
	h.mustExec("enqueue", "--collection", "Musicas", "--payload", `{"musica":"Segunda","cantor":"B"}`)

	report := decodeOutput[drainView](t, h.mustExec("sync"))

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Remaining)
	assert.False(t, report.Offline)

	require.Equal(t, 2, h.remote.writeCount())
	assert.Equal(t, "Primeira", h.remote.writes[0]["musica"])
	assert.Equal(t, "Segunda", h.remote.writes[1]["musica"])
	assert.Equal(t, "Musicas", h.remote.writes[0]["sheet"])

	assert.Empty(t, decodeOutput[[]models.QueueItem](t, h.mustExec("queue")))
}

func TestRefresh_ReplacesCacheAndMarksFullSync(t *testing.T) {
	h := newHarness(t)
	h.remote.rows[models.CollectionSongs] = []models.Record{
		{"id": "1", "musica": "Aleluia"},
		{"id": "2", "musica": "Hosana"},
	}
	h.mustExec("enqueue", "--collection", "Musicas", "--payload", `{"musica":"Local","cantor":"C"}`)

	views := decodeOutput[[]refreshView](t, h.mustExec("refresh"))
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Empty(t, v.Error, v.Collection)
	}

	cached := decodeOutput[[]models.Record](t, h.mustExec("cache", "Musicas"))
	require.Len(t, cached, 2)
	assert.Equal(t, "Aleluia", cached[0]["musica"])

	status := decodeOutput[statusView](t, h.mustExec("status"))
	assert.True(t, status.Online)
	assert.NotNil(t, status.LastFullSync)
	assert.Equal(t, 1, status.Pending)
}

func TestCache_RequiresCollection(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("cache")
	require.Error(t, err)
}

func TestCache_MissIsEmpty(t *testing.T) {
	h := newHarness(t)

	assert.Empty(t, decodeOutput[[]models.Record](t, h.mustExec("cache", "Escalas")))
}

func TestCache_Clear(t *testing.T) {
	h := newHarness(t)
	h.mustExec("enqueue", "--collection", "Musicas", "--payload", `{"musica":"Aleluia","cantor":"Coral"}`)

	h.mustExec("cache", "Musicas", "--clear")

	assert.Empty(t, decodeOutput[[]models.Record](t, h.mustExec("cache", "Musicas")))
	assert.Len(t, decodeOutput[[]models.QueueItem](t, h.mustExec("queue")), 1)
}

func TestRoot_InvalidConfig(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("queue", "--probe-interval", "1s", "--probe-timeout", "5s")
	require.Error(t, err)
}

func TestRoot_VersionPrintsBuildInfo(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Build version: N/A")
	assert.Contains(t, out.String(), "Build commit: N/A")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRemote creates an httpRemoteService pointed at the test server.
func newTestRemote(t *testing.T, serverURL string, mutate ...func(*config.ClientRemote)) *httpRemoteService {
	t.Helper()
	cfg := config.ClientRemote{
		BaseURL:      serverURL,
		WritePath:    "/exec",
		ReadPath:     "/exec",
		WriteTimeout: 2 * time.Second,
		ReadTimeout:  2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	r, err := NewHTTPRemoteService(cfg, logger.Nop())
	require.NoError(t, err)
	return r.(*httpRemoteService)
}

func newRemoteServer(t *testing.T, write, read http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	if write != nil {
		r.Post("/exec", write)
	}
	if read != nil {
		r.Get("/exec", read)
	}
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func songOp(t *testing.T) models.Operation {
	t.Helper()
	op, err := models.NewOperation(models.ActionAddRow, models.CollectionSongs,
		map[string]string{"musica": "Grande é o Senhor", "cantor": "Fernandinho"})
	require.NoError(t, err)
	return op
}

func writeRaw(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// ── NewHTTPRemoteService ─────────────────────────────────────────────────────

func TestNewHTTPRemoteService_InvalidBaseURL(t *testing.T) {
	_, err := NewHTTPRemoteService(config.ClientRemote{BaseURL: "  "}, nil)
	assert.Error(t, err)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"localhost:8080", "http://localhost:8080", false},
		{"https://remote.example.com/exec/", "https://remote.example.com/exec", false},
		{"", "", true},
		{"http://", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ── Write ────────────────────────────────────────────────────────────────────

func TestWrite_Success(t *testing.T) {
	var body map[string]any
	srv := newRemoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = utils.WriteJSON(w, map[string]string{"status": "success"}, http.StatusOK)
	}, nil)

	resp, err := newTestRemote(t, srv.URL).Write(context.Background(), songOp(t))

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, "addRow", body["action"])
	assert.Equal(t, "Musicas", body["sheet"])
	assert.Equal(t, "Grande é o Senhor", body["musica"])
	assert.Equal(t, "Fernandinho", body["cantor"])
}

func TestWrite_PostsFieldsOutsideTypedPayload(t *testing.T) {
	var body map[string]any
	srv := newRemoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = utils.WriteJSON(w, map[string]string{"status": "success"}, http.StatusOK)
	}, nil)

	op, err := models.NewOperation(models.ActionAddRow, models.CollectionSongs, map[string]any{
		"musica": "A", "cantor": "B", "tom": 5, "id": "42", "categoria": "Louvor",
	})
	require.NoError(t, err)

	_, err = newTestRemote(t, srv.URL).Write(context.Background(), op)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"action": "addRow", "sheet": "Musicas",
		"musica": "A", "cantor": "B", "tom": float64(5), "id": "42", "categoria": "Louvor",
	}, body)
}

func TestWrite_Rejected(t *testing.T) {
	srv := newRemoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = utils.WriteJSON(w, map[string]string{"status": "error", "message": "sheet not found"}, http.StatusOK)
	}, nil)

	resp, err := newTestRemote(t, srv.URL).Write(context.Background(), songOp(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "sheet not found")
	assert.Equal(t, models.StatusError, resp.Status)
	assert.False(t, IsRetryable(err))
}

func TestWrite_JSONBodyWinsOverStatusCode(t *testing.T) {
	srv := newRemoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = utils.WriteJSON(w, map[string]string{"status": "success"}, http.StatusInternalServerError)
	}, nil)

	resp, err := newTestRemote(t, srv.URL).Write(context.Background(), songOp(t))

	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, resp.Status)
}

func TestWrite_Classification(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErr   error
		retryable bool
	}{
		{"html page", writeRaw(http.StatusOK, "<html>login</html>"), ErrProtocol, false},
		{"empty 200", writeRaw(http.StatusOK, ""), ErrProtocol, false},
		{"unknown status value", writeRaw(http.StatusOK, `{"status":"queued"}`), ErrUnrecognizedResponse, false},
		{"missing status", writeRaw(http.StatusOK, `{"ok":true}`), ErrUnrecognizedResponse, false},
		{"json array", writeRaw(http.StatusOK, `[1,2]`), ErrUnrecognizedResponse, false},
		{"bad gateway text", writeRaw(http.StatusBadGateway, "upstream down"), ErrTransport, true},
		{"empty 503", writeRaw(http.StatusServiceUnavailable, ""), ErrTransport, true},
		{"404 text", writeRaw(http.StatusNotFound, "not found"), ErrProtocol, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRemoteServer(t, tt.handler, nil)

			_, err := newTestRemote(t, srv.URL).Write(context.Background(), songOp(t))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestWrite_NetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestRemote(t, url).Write(context.Background(), songOp(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestWrite_TimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := newRemoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, nil)
	defer close(release)

	remote := newTestRemote(t, srv.URL, func(c *config.ClientRemote) {
		c.WriteTimeout = 50 * time.Millisecond
	})
	_, err := remote.Write(context.Background(), songOp(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

// ── Fetch ────────────────────────────────────────────────────────────────────

func TestFetch_Success(t *testing.T) {
	srv := newRemoteServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Musicas", r.URL.Query().Get("sheet"))
		_, _ = utils.WriteJSON(w, map[string]any{
			"status": "success",
			"data": []map[string]any{
				{"id": "1", "musica": "Grande é o Senhor"},
				{"id": "2", "musica": "Aleluia"},
			},
		}, http.StatusOK)
	})

	records, err := newTestRemote(t, srv.URL).Fetch(context.Background(), models.CollectionSongs)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Grande é o Senhor", records[0]["musica"])
}

func TestFetch_SuccessWithoutData(t *testing.T) {
	srv := newRemoteServer(t, nil, writeRaw(http.StatusOK, `{"status":"success"}`))

	records, err := newTestRemote(t, srv.URL).Fetch(context.Background(), models.CollectionSchedules)

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"rejected", writeRaw(http.StatusOK, `{"status":"error","message":"no sheet"}`), ErrRejected},
		{"data not array", writeRaw(http.StatusOK, `{"status":"success","data":"x"}`), ErrUnrecognizedResponse},
		{"rows not objects", writeRaw(http.StatusOK, `{"status":"success","data":[1]}`), ErrUnrecognizedResponse},
		{"not json", writeRaw(http.StatusOK, "oops"), ErrProtocol},
		{"server down", writeRaw(http.StatusInternalServerError, "boom"), ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRemoteServer(t, nil, tt.handler)

			records, err := newTestRemote(t, srv.URL).Fetch(context.Background(), models.CollectionSongs)

			assert.Nil(t, records)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

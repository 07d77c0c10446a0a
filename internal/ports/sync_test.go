package ports_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Amund211/gacharecord/internal/ports"
	"github.com/Amund211/gacharecord/internal/worker"
	"github.com/stretchr/testify/require"
)

func TestMakePostSyncHandler(t *testing.T) {
	t.Parallel()

	makeRequest := func(body string) *http.Request {
		req := httptest.NewRequest("POST", "/v1/sync", strings.NewReader(body))
		req.RemoteAddr = "127.0.0.1:1234"
		return req
	}

	// The worker is not running, so commands stay queued and the test can observe them
	t.Run("queues a sync", func(t *testing.T) {
		t.Parallel()

		session := worker.NewSession(1)
		handler := ports.MakePostSyncHandler(session, testLogger, noopMiddleware)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(`{"playerId":" 100000001 ","useCache":true}`))

		require.Equal(t, http.StatusAccepted, w.Code)
		require.JSONEq(t, `{"queued":true}`, w.Body.String())

		// Queue holds a single command, so the next one is rejected
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(`{}`))
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("empty body syncs the default player", func(t *testing.T) {
		t.Parallel()

		session := worker.NewSession(1)
		handler := ports.MakePostSyncHandler(session, testLogger, noopMiddleware)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, makeRequest(""))

		require.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("bad requests", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{`, `{"playerId":"abc"}`, `{"useCache":"yes"}`} {
			session := worker.NewSession(1)
			handler := ports.MakePostSyncHandler(session, testLogger, noopMiddleware)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, makeRequest(body))

			require.Equal(t, http.StatusBadRequest, w.Code, body)
			require.True(t, session.Send(worker.ListPlayersCommand{}), "nothing should have been queued")
		}
	})
}

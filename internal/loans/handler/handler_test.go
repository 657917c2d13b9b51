package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librisync/internal/audit"
	"librisync/internal/loans/metrics"
	"librisync/internal/loans/models"
	"librisync/internal/loans/service"
	"librisync/internal/loans/store"
	"librisync/internal/platform/logger"
)

type capturingPublisher struct {
	events []models.LoanEvent
}

func (p *capturingPublisher) PublishLoanEvent(_ context.Context, event models.LoanEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	router    http.Handler
	store     *store.MemoryStore
	publisher *capturingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewMemory([]int64{1}, []int64{2})
	pub := &capturingPublisher{}

	svc, err := service.New(st, pub, audit.NewRecorder(), logger.New("test"), metrics.New())
	require.NoError(t, err)

	r := chi.NewRouter()
	New(svc, logger.New("test")).Register(r)

	return &fixture{router: r, store: st, publisher: pub}
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return w
}

func TestHandleCreateLoan(t *testing.T) {
	t.Run("existing user and book completes and publishes", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans", `{"user_id":1,"book_id":2}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			LoanID int64  `json:"loan_id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Positive(t, resp.LoanID)
		assert.Equal(t, "completed", resp.Status)

		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, models.LoanEvent{BookID: 2, UserID: 1, Free: false}, f.publisher.events[0])
	})

	t.Run("unknown user returns 404 with no side effects", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans", `{"user_id":999,"book_id":2}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"User not found"}`, w.Body.String())

		assert.Empty(t, f.store.Loans(), "no loan row")
		assert.Empty(t, f.publisher.events, "no queue message")
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans", `{"user_id":1,"book_id":999}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"Book not found"}`, w.Body.String())
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans", `not-json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields return 400", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans", `{"user_id":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleFreeLoan(t *testing.T) {
	t.Run("publishes return event", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans/free", `{"user_id":1,"book_id":2}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

		require.Len(t, f.publisher.events, 1)
		assert.True(t, f.publisher.events[0].Free)
		assert.Empty(t, f.store.Loans(), "loan rows untouched")
	})

	t.Run("unknown user returns 404", func(t *testing.T) {
		f := newFixture(t)

		w := post(f.router, "/loans/free", `{"user_id":42,"book_id":2}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail":"User not found"}`, w.Body.String())
	})
}

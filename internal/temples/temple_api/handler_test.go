package temple_api

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-edarshan/internal/database"
	"ms-edarshan/internal/kafka"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/sse"
	templedb "ms-edarshan/internal/temples/db"
	"ms-edarshan/internal/temples/service"
	"ms-edarshan/internal/utils"
)

func setupRouter(t *testing.T) (*chi.Mux, *Handler) {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, database.CreateSchema(context.Background(), db))
	t.Cleanup(func() { db.Close() })

	emitter := sse.NewVisitorEventEmitter()
	svc := service.NewTempleService(&templedb.DB{Bun: db}, sse.LocalBroadcaster{Emitter: emitter}, kafka.NoopPublisher{}, logger.NewNop())
	h := NewHandler(svc, emitter, service.DefaultTemples, logger.NewNop())

	r := chi.NewRouter()
	h.Routes(r)
	h.AdminRoutes(r)
	return r, h
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSeedThenList(t *testing.T) {
	r, _ := setupRouter(t)

	rec := do(r, http.MethodPost, "/seed-temples", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(r, http.MethodPost, "/seed-temples", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp utils.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Temples already exist", resp.Message)

	rec = do(r, http.MethodGet, "/temples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var temples []models.Temple
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&temples))
	assert.Len(t, temples, 3)
}

func TestCreateTempleValidation(t *testing.T) {
	r, _ := setupRouter(t)

	rec := do(r, http.MethodPost, "/temples", `{"location":"Dwarka"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = do(r, http.MethodPost, "/temples", `{"name":"X","unexpected":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/temples", `{"name":"Ambaji Temple","capacity":300,"openTime":"06:00","ticketPrices":{"regular":20}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var temple models.Temple
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&temple))
	assert.NotEmpty(t, temple.ID)
	assert.Equal(t, 20.0, temple.TicketPrices.Regular)
	assert.Equal(t, 0.0, temple.TicketPrices.VIP)
}

func TestVisitAndReset(t *testing.T) {
	r, _ := setupRouter(t)

	rec := do(r, http.MethodPost, "/temples", `{"name":"Ambaji Temple"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var temple models.Temple
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&temple))

	for i := 0; i < 3; i++ {
		rec = do(r, http.MethodPost, "/temples/"+temple.ID+"/visit", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&temple))
	assert.Equal(t, 3, temple.CurrentVisitors)

	rec = do(r, http.MethodPost, "/temples/"+temple.ID+"/visitors/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&temple))
	assert.Equal(t, 0, temple.CurrentVisitors)

	rec = do(r, http.MethodPost, "/temples/unknown/visit", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTempleNotFound(t *testing.T) {
	r, _ := setupRouter(t)
	rec := do(r, http.MethodGet, "/temples/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamVisitorsSendsSnapshotAndUpdates(t *testing.T) {
	r, h := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/seed-temples", "").Code)

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/temples/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, []byte) {
		var name string
		var data []byte
		for {
			line, err := reader.ReadBytes('\n')
			require.NoError(t, err)
			line = bytes.TrimRight(line, "\n")
			switch {
			case len(line) == 0:
				if name != "" {
					return name, data
				}
			case bytes.HasPrefix(line, []byte("event: ")):
				name = string(line[len("event: "):])
			case bytes.HasPrefix(line, []byte("data: ")):
				data = line[len("data: "):]
			}
		}
	}

	name, _ := readEvent()
	assert.Equal(t, "connected", name)

	name, data := readEvent()
	require.Equal(t, "snapshot", name)
	var snapshot []models.VisitorUpdate
	require.NoError(t, json.Unmarshal(data, &snapshot))
	require.Len(t, snapshot, 3)

	require.Eventually(t, func() bool { return h.Emitter.ClientCount("") == 1 }, time.Second, 10*time.Millisecond)
	rec := do(r, http.MethodPost, "/temples/"+snapshot[0].TempleID+"/visit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	name, data = readEvent()
	require.Equal(t, "visitors", name)
	var update models.VisitorUpdate
	require.NoError(t, json.Unmarshal(data, &update))
	assert.Equal(t, snapshot[0].TempleID, update.TempleID)
	assert.Equal(t, 1, update.CurrentVisitors)
}

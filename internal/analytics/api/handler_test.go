package analytics_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-edarshan/internal/analytics"
	"ms-edarshan/internal/apperr"
	"ms-edarshan/internal/logger"
)

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetSummary(ctx context.Context) (*analytics.Summary, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*analytics.Summary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) GetTempleAnalytics(ctx context.Context, templeID string) (*analytics.TempleAnalytics, error) {
	args := m.Called(ctx, templeID)
	if a, ok := args.Get(0).(*analytics.TempleAnalytics); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) GetBatchTempleAnalytics(ctx context.Context, templeIDs []string) (*analytics.BatchTempleAnalytics, error) {
	args := m.Called(ctx, templeIDs)
	if a, ok := args.Get(0).(*analytics.BatchTempleAnalytics); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc *MockAnalyticsService) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, logger.NewNop()).RegisterRoutes(r)
	return r
}

func TestGetSummary(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetSummary", mock.Anything).Return(&analytics.Summary{Temples: 3, PaidRevenue: 540}, nil)

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body analytics.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 3, body.Temples)
	assert.Equal(t, 540.0, body.PaidRevenue)
}

func TestGetTempleAnalyticsNotFound(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetTempleAnalytics", mock.Anything, "nope").Return(nil, apperr.NotFound("Temple not found"))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/temples/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Temple not found")
}

func TestGetTempleAnalyticsInternalError(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetTempleAnalytics", mock.Anything, "t1").
		Return(nil, apperr.Internal("Failed to load analytics", errors.New("connection reset")))

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/temples/t1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestGetBatchTempleAnalytics(t *testing.T) {
	svc := new(MockAnalyticsService)
	svc.On("GetBatchTempleAnalytics", mock.Anything, []string{"t1", "t2"}).
		Return(&analytics.BatchTempleAnalytics{TempleIDs: []string{"t1", "t2"}, TotalBookings: 7}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analytics/temples/batch", strings.NewReader(`{"templeIds":["t1","t2"]}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalBookings":7`)
	svc.AssertExpectations(t)
}

func TestGetBatchTempleAnalyticsRejectsEmptyList(t *testing.T) {
	svc := new(MockAnalyticsService)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analytics/temples/batch", strings.NewReader(`{"templeIds":[]}`))
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetBatchTempleAnalytics", mock.Anything, mock.Anything)
}

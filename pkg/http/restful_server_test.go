package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/fleet-dashboard-service/pkg/fleet/mocks"
	_ "liyu1981.xyz/fleet-dashboard-service/pkg/testing"

	"liyu1981.xyz/fleet-dashboard-service/pkg/cache"
	"liyu1981.xyz/fleet-dashboard-service/pkg/common"
	"liyu1981.xyz/fleet-dashboard-service/pkg/fleet"
	"liyu1981.xyz/fleet-dashboard-service/pkg/models"
)

type fixedStore struct {
	records []models.MetricRecord
}

func (s *fixedStore) Load() ([]models.MetricRecord, error) {
	return s.records, nil
}

func fixtureRecords() []models.MetricRecord {
	day := func(s string) time.Time {
		d, _ := time.Parse(time.DateOnly, s)
		return d
	}
	return []models.MetricRecord{
		{Date: day("2024-03-13"), DeviceID: 1, BatteryPct: 80.0, Status: models.StatusOK},
		{Date: day("2024-03-14"), DeviceID: 1, BatteryPct: 78.5, ErrorCount: 1, Status: models.StatusWarn},
		{Date: day("2024-03-14"), DeviceID: 2, BatteryPct: 12.0, Status: models.StatusLowBattery},
	}
}

func setupTestServer() *RestfulServer {
	fleetObj := fleet.Fleet{
		Loader: cache.NewLoader(&fixedStore{records: fixtureRecords()}),
	}
	fleetObj.WithServices(fleet.ServiceOpts{
		Query: fleetObj.GetIQuery(),
	})

	rs := &RestfulServer{
		Server: gin.Default(),
		Fleet:  &fleetObj,
		// default we use no limiter, if need, later assign it rs.RateLimiterStore = fleet.NewRateLimiterStore(...)
	}

	rs.Setup()

	return rs
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetRecords(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/records", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.MetricRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 3)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetRecordsFiltered(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/records?status=WARN&status=LOW_BATTERY&device=1", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.MetricRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].DeviceID)
	assert.Equal(t, models.StatusWarn, records[0].Status)
}

func TestGetRecordsSearchAndLimit(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/records?search=device-2", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.MetricRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].DeviceID)

	req = httptest.NewRequest("GET", "/api/records?limit=2", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestGetRecordsBadStatus(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/records?status=BROKEN", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLatestPerDevice(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/devices/latest", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var latest []LatestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
	require.Len(t, latest, 2)
	assert.Equal(t, "device-1", latest[0].Label)
	assert.Equal(t, "2024-03-14", latest[0].Day())
	assert.Equal(t, "device-2", latest[1].Label)
}

func TestGetStatusCounts(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/status/counts", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"OK":1,"WARN":1,"LOW_BATTERY":1}`, w.Body.String())
}

func TestGetSummary(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("GET", "/api/summary", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary fleet.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Devices)
	assert.Equal(t, "2024-03-14", summary.LastDay)
}

func TestGetSummaryWithMockedQuery(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuery := mocks.NewMockIQuery(ctrl)
	mockQuery.
		EXPECT().
		Summarize(gomock.Any()).
		Return(nil, errors.New("backing store unavailable")).
		Times(1)

	fleetObj := fleet.Fleet{}
	fleetObj.WithServices(fleet.ServiceOpts{Query: mockQuery})

	rs := &RestfulServer{Server: gin.Default(), Fleet: &fleetObj}
	rs.Setup()

	req := httptest.NewRequest("GET", "/api/summary", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimited(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	rs.RateLimiterStore = fleet.NewRateLimiterStore(1, 2)

	codes := make(map[int]int)
	for range 5 {
		req := httptest.NewRequest("GET", "/api/records", nil)
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		codes[w.Code]++
	}

	assert.Equal(t, 2, codes[http.StatusOK])
	assert.Equal(t, 3, codes[http.StatusTooManyRequests])
}

func TestPostLimiter(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	rs.RateLimiterStore = fleet.NewRateLimiterStore(10, 20)

	body, _ := json.Marshal(LimiterRequest{Client: "192.0.2.1", Rate: 5, Burst: 7})
	req := httptest.NewRequest("POST", "/api/limiter", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	limiter := rs.RateLimiterStore.GetLimiter("192.0.2.1")
	assert.Equal(t, float64(5), float64(limiter.Limit()))
	assert.Equal(t, 7, limiter.Burst())
}

func TestPostLimiterBadBody(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	req := httptest.NewRequest("POST", "/api/limiter", bytes.NewReader([]byte(`{"rate": "fast"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package hc

import (
	"boostlend/core"
	"boostlend/pkg/lending"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReserves []*core.Reserve

func (rs fakeReserves) Reserves() []*lending.ReserveData {
	out := make([]*lending.ReserveData, 0, len(rs))
	for _, r := range rs {
		out = append(out, &lending.ReserveData{Reserve: r})
	}
	return out
}

func check(t *testing.T, rs fakeReserves) map[string]interface{} {
	t.Helper()

	rec := httptest.NewRecorder()
	Handle("v1.2.0", rs).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandle(t *testing.T) {
	body := check(t, fakeReserves{
		{Active: true, LastUpdateTimestamp: 1_700_000_100},
		{Active: true, Frozen: true, LastUpdateTimestamp: 1_700_000_000},
		{Active: false, LastUpdateTimestamp: 1_800_000_000},
	})

	assert.Equal(t, "boostlend", body["service"])
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1.2.0", body["version"])
	assert.Equal(t, float64(2), body["active_reserves"])
	assert.Equal(t, float64(1), body["frozen_reserves"])
	assert.Equal(t, float64(1_700_000_100), body["last_accrual"])
	assert.Contains(t, body, "uptime")
}

func TestHandleWithoutReserves(t *testing.T) {
	body := check(t, nil)
	assert.Equal(t, "no active reserves", body["status"])
	assert.Equal(t, float64(0), body["active_reserves"])
}

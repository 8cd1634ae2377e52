package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("list_servers", 200, 120*time.Millisecond)
	m.ObserveRequest("list_servers", 200, 80*time.Millisecond)
	m.ObserveRequest("perform_action", 401, 50*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("list_servers", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("perform_action", "401")))
}

func TestObserveLogin(t *testing.T) {
	m := NewMetrics()

	m.ObserveLogin(true)
	m.ObserveLogin(true)
	m.ObserveLogin(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues("failure")))
}

func TestObserveCache(t *testing.T) {
	m := NewMetrics()

	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
}

func TestHandlerServesMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordCommand("status")

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bot_commands_total")
}

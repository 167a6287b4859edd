package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/internal/analytics"
	"github.com/thep200/oss-finder/pkg/kafka"
)

func TestInitialize_Mock(t *testing.T) {
	a := NewFinderAPI()
	require.NoError(t, a.Initialize(context.Background(), Options{Mock: true, LogLevel: "error"}))
	t.Cleanup(func() { _ = a.Close() })

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Catalog)
	assert.IsType(t, &analytics.DirectSink{}, a.Events)

	rec := httptest.NewRecorder()
	a.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := a.NewConsumer()
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)
}

func TestClose_Idempotent(t *testing.T) {
	a := NewFinderAPI()
	require.NoError(t, a.Initialize(context.Background(), Options{Mock: true, LogLevel: "error"}))
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

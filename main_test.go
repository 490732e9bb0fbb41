package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotek/internal/config"
	"apotek/internal/database"
	"apotek/internal/repositories"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	return config.Config{
		AppName:       "apotek-test",
		JWTSecret:     "test_jwt_secret",
		NotifyTimeout: time.Second,
	}
}

func TestNewApp_HealthAndMetrics(t *testing.T) {
	db, err := database.OpenInMemory("main_health")
	require.NoError(t, err)

	app, notifier := NewApp(testConfig(), db, Infra{})
	defer notifier.Wait()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "connected", health["database"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNewApp_ProtectedRoutes(t *testing.T) {
	db, err := database.OpenInMemory("main_protected")
	require.NoError(t, err)

	app, _ := NewApp(testConfig(), db, Infra{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/delivery/partners", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "partner listing is public")
}

func TestSeedDemoData(t *testing.T) {
	db, err := database.OpenInMemory("main_seed")
	require.NoError(t, err)
	store := repositories.NewGORMStore(db)
	ctx := context.Background()

	require.NoError(t, seedDemoData(ctx, store))
	pharmacies, err := store.Providers().ListActivePharmacies(ctx)
	require.NoError(t, err)
	assert.Len(t, pharmacies, 3)
	partners, err := store.Providers().ListAvailablePartners(ctx)
	require.NoError(t, err)
	assert.Len(t, partners, 2)

	// A second run leaves the catalog alone.
	require.NoError(t, seedDemoData(ctx, store))
	pharmacies, err = store.Providers().ListActivePharmacies(ctx)
	require.NoError(t, err)
	assert.Len(t, pharmacies, 3)
}

func TestSetLogLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.Disabled)

	setLogLevel("DEBUG")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	setLogLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	setLogLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

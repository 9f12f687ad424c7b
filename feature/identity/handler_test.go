package identity_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"cern-sync/core/storage"
	"cern-sync/feature/identity"
	"cern-sync/feature/identity/reconcile"
	"cern-sync/feature/identity/reindex"
	"cern-sync/feature/identity/store"
	syncpkg "cern-sync/feature/identity/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeAuthz struct {
	records []map[string]any
}

func (f *fakeAuthz) FetchIdentities(context.Context, string) ([]map[string]any, error) {
	return f.records, nil
}

var dbCounter int

func newTestApp(t *testing.T, source syncpkg.AuthzSource) *fiber.App {
	t.Helper()
	dbCounter++
	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", dbCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	engine := reconcile.NewEngine(store.NewAccountStore(db), zap.NewNop())
	svc := syncpkg.NewService(
		syncpkg.Config{Method: syncpkg.MethodAuthz},
		source,
		nil,
		engine,
		reindex.New("", nil, zap.NewNop()),
		nil,
		storage.Config{},
		zap.NewNop(),
	)

	app := fiber.New()
	feature := identity.NewFeature(svc, zap.NewNop())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app
}

func TestHandleGetReportBeforeAnyRun(t *testing.T) {
	app := newTestApp(t, &fakeAuthz{})

	resp, err := app.Test(httptest.NewRequest("GET", "/sync/report", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleSyncUsers(t *testing.T) {
	source := &fakeAuthz{records: []map[string]any{{
		"personId":            "1",
		"primaryAccountEmail": "a@x.org",
		"upn":                 "adoe",
	}}}
	app := newTestApp(t, source)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync/users", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report syncpkg.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, "users", report.Kind)

	// The completed run is now the last report.
	resp, err = app.Test(httptest.NewRequest("GET", "/sync/report", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestFeatureDisabledWithoutService(t *testing.T) {
	feature := identity.NewFeature(nil, zap.NewNop())
	assert.False(t, feature.IsEnabled())
	assert.Equal(t, "identity", feature.Name())
}

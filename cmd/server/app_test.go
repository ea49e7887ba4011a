package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/mise-api/internal/config"
	"github.com/phrazzld/mise-api/internal/mocks"
	"github.com/phrazzld/mise-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobColumns = []string{"id", "kind", "subject_id", "run_at", "created_at"}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "error"},
		Scheduler: config.SchedulerConfig{
			ShutdownTimeout: time.Second,
			PairingDelay:    3 * time.Second,
		},
		Generation: config.GenerationConfig{
			MaxAttempts: 1,
			CallTimeout: time.Second,
		},
	}
}

func testExternals() *externals {
	return &externals{
		images:   &mocks.MockImageGenerator{},
		pairings: &mocks.MockPairingGenerator{},
		storage:  &mocks.MockObjectStore{BaseURL: "https://cdn.test"},
		locker:   &mocks.MockLocker{},
	}
}

func newTestApplication(t *testing.T) (*application, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	app, err := newApplication(testConfig(), discardLogger(), db, testExternals())
	require.NoError(t, err)
	return app, mock
}

func TestNewApplicationRegistersEveryJobKind(t *testing.T) {
	t.Parallel()

	app, _ := newTestApplication(t)

	assert.Equal(t, []string{
		task.KindPublishDish,
		task.KindRecipeImage,
		task.KindStarchImage,
		task.KindWinePairing,
	}, app.registry.Kinds())
	assert.NotNil(t, app.recipes)
	assert.NotNil(t, app.jobs)
	assert.NotNil(t, app.notifications)
	assert.False(t, app.scheduler.Running())
}

func TestApplicationServicesUseTheDatabase(t *testing.T) {
	t.Parallel()

	app, mock := newTestApplication(t)
	tagID, recipeID := uuid.New(), uuid.New()
	mock.ExpectQuery("FROM recipe_tags").WithArgs(tagID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipe_id", "name"}).
			AddRow(tagID.String(), recipeID.String(), "Vegan"))

	tag, err := app.recipes.GetTag(context.Background(), tagID)
	require.NoError(t, err)
	assert.Equal(t, recipeID, tag.RecipeID)
}

func TestNewApplicationRequiresDependencies(t *testing.T) {
	t.Parallel()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = newApplication(nil, discardLogger(), db, testExternals())
	assert.Error(t, err)

	_, err = newApplication(testConfig(), discardLogger(), db, &externals{})
	assert.ErrorIs(t, err, task.ErrNilDependency)
}

func TestApplicationListsSubmittedJobs(t *testing.T) {
	t.Parallel()

	app, mock := newTestApplication(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM scheduled_jobs").WillReturnRows(sqlmock.NewRows(jobColumns))
	require.NoError(t, app.scheduler.Start(ctx))
	t.Cleanup(func() { _ = app.scheduler.Stop(context.Background()) })

	mock.ExpectExec("INSERT INTO scheduled_jobs").WillReturnResult(sqlmock.NewResult(0, 1))
	recipeID := uuid.New()
	id := app.submitter.Submit(ctx, task.KindWinePairing, recipeID, time.Hour)
	require.NotEmpty(t, id)

	rec := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body jobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, id, body.Jobs[0].ID)
	assert.Equal(t, task.KindWinePairing, body.Jobs[0].Kind)
	assert.Equal(t, recipeID, body.Jobs[0].SubjectID)
}

func TestApplicationRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	app, mock := newTestApplication(t)
	mock.ExpectQuery("FROM scheduled_jobs").WillReturnRows(sqlmock.NewRows(jobColumns))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, app.scheduler.Running, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, app.scheduler.Running())
}

func TestExternalsCloseWithoutRedis(t *testing.T) {
	t.Parallel()

	assert.NoError(t, testExternals().close())
	var nilExt *externals
	assert.NoError(t, nilExt.close())
}

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarcBaumholz/habit-toolbox/internal/database"
	"github.com/MarcBaumholz/habit-toolbox/internal/models"
	"github.com/MarcBaumholz/habit-toolbox/internal/repository"
	"github.com/MarcBaumholz/habit-toolbox/internal/services"
	jwtutil "github.com/MarcBaumholz/habit-toolbox/pkg/jwt"
	"github.com/MarcBaumholz/habit-toolbox/pkg/logger"
	"github.com/MarcBaumholz/habit-toolbox/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSecret = "handler-test-secret"

type testEnv struct {
	router *mux.Router
	db     *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.InitLogger()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	habitService := services.NewHabitService(
		repository.NewHabitRepository(db),
		repository.NewCompletionRepository(db),
		repository.NewSubscriptionRepository(db),
		0,
	)
	groupService := services.NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewProofRepository(db),
		repository.NewMessageRepository(db),
	)

	habitHandler := NewHabitHandler(habitService)
	groupHandler := NewGroupHandler(groupService, NewMessageHub(), t.TempDir())

	router := mux.NewRouter()

	habitRoutes := router.PathPrefix("/habits").Subrouter()
	habitRoutes.Use(middleware.AuthMiddleware(testSecret))
	habitRoutes.HandleFunc("", habitHandler.CreateHabitHandler).Methods("POST")
	habitRoutes.HandleFunc("", habitHandler.GetHabitsHandler).Methods("GET")
	habitRoutes.HandleFunc("/public", habitHandler.GetPublicHabitsHandler).Methods("GET")
	habitRoutes.HandleFunc("/{id:[0-9]+}", habitHandler.GetHabitHandler).Methods("GET")
	habitRoutes.HandleFunc("/{id:[0-9]+}/week", habitHandler.GetWeekHandler).Methods("GET")
	habitRoutes.HandleFunc("/{id:[0-9]+}/toggle/{day}", habitHandler.ToggleDayHandler).Methods("POST")

	groupRoutes := router.PathPrefix("/groups").Subrouter()
	groupRoutes.Use(middleware.AuthMiddleware(testSecret))
	groupRoutes.HandleFunc("", groupHandler.CreateGroupHandler).Methods("POST")
	groupRoutes.HandleFunc("/{id:[0-9]+}/proofs", groupHandler.CreateProofHandler).Methods("POST")

	return &testEnv{router: router, db: db}
}

func (env *testEnv) createUser(t *testing.T, email string) (int64, string) {
	t.Helper()
	user, err := repository.NewUserRepository(env.db).CreateUser(context.Background(), &models.User{
		Email:          email,
		HashedPassword: "not-a-real-hash",
	})
	require.NoError(t, err)

	token, err := jwtutil.GenerateToken(user.ID, email, testSecret, time.Hour)
	require.NoError(t, err)
	return user.ID, token
}

func (env *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("{}")
	} else {
		reqBody = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestHabitRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/habits", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "GET", "/habits", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHabitLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "marc@example.com")

	rec := env.do(t, "POST", "/habits", token, `{"title":"Meditate"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID            int64 `json:"id"`
		CurrentStreak int   `json:"current_streak"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	assert.Equal(t, 0, created.CurrentStreak)

	// Complete three consecutive days.
	for _, d := range []string{"2024-01-05", "2024-01-06", "2024-01-07"} {
		rec = env.do(t, "POST", "/habits/1/toggle/"+d, token, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var toggled struct {
			Completed bool `json:"completed"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
		assert.True(t, toggled.Completed)
	}

	rec = env.do(t, "GET", "/habits/1?today=2024-01-07", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Title         string `json:"title"`
		CurrentStreak int    `json:"current_streak"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Meditate", fetched.Title)
	assert.Equal(t, 3, fetched.CurrentStreak)

	rec = env.do(t, "GET", "/habits/1/week?today=2024-01-07", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var week struct {
		WeekStart string          `json:"week_start"`
		Days      map[string]bool `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &week))
	assert.Equal(t, "2024-01-01", week.WeekStart)
	assert.Len(t, week.Days, 7)
	assert.True(t, week.Days["2024-01-05"])
	assert.False(t, week.Days["2024-01-01"])
}

func TestInvalidToggleDateRejected(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "marc@example.com")

	rec := env.do(t, "POST", "/habits", token, `{"title":"Run"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, "POST", "/habits/1/toggle/not-a-date", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForeignHabitHiddenOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.createUser(t, "owner@example.com")
	_, otherToken := env.createUser(t, "other@example.com")

	rec := env.do(t, "POST", "/habits", ownerToken, `{"title":"Secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, "GET", "/habits/1?today=2024-01-07", otherToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProofQuotaReturns429(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "owner@example.com")

	rec := env.do(t, "POST", "/groups", token, `{"name":"Runners"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var group struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &group))

	// The owner membership defaults to 7 proofs per week; use them all up
	// inside one calendar week.
	for i := 0; i < 7; i++ {
		rec = env.do(t, "POST", "/groups/1/proofs?today=2024-01-01", token, `{"image_url":"/uploads/x.jpg"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = env.do(t, "POST", "/groups/1/proofs?today=2024-01-02", token, `{"image_url":"/uploads/x.jpg"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var quota struct {
		Count int `json:"count"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quota))
	assert.Equal(t, 7, quota.Count)
	assert.Equal(t, 7, quota.Limit)

	// The following Monday the window has moved on.
	rec = env.do(t, "POST", "/groups/1/proofs?today=2024-01-08", token, `{"image_url":"/uploads/x.jpg"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

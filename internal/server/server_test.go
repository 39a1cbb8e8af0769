package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/featureflags"
	"mingle/internal/models"
	"mingle/internal/repository"
	"mingle/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Password123!abc"

// testServer wires a Server against an in-memory sqlite database with all
// routes mounted, skipping the Prometheus middleware so repeated setups do
// not fight over collector registration.
type testServer struct {
	*Server
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "test_secret",
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	tagRepo := repository.NewTagRepository(db)
	postRepo := repository.NewPostRepository(db)

	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		tagRepo:      tagRepo,
		postRepo:     postRepo,
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
	}
	s.profileService = service.NewProfileService(profileRepo, userRepo)
	s.postService = service.NewPostService(postRepo, tagRepo, profileRepo)

	app := fiber.New()
	s.SetupRoutes(app)

	return &testServer{Server: s, app: app, db: db}
}

// createAccount inserts a user with the shared test password, provisions its
// profile, and returns the profile with a valid bearer token.
func (ts *testServer) createAccount(t *testing.T, username string) (*models.Profile, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, ts.db.Create(user).Error)

	profile, err := ts.profileService.EnsureProfile(context.Background(), user.ID)
	require.NoError(t, err)

	token, err := ts.generateToken(user.ID, user.Username)
	require.NoError(t, err)

	return profile, token
}

// doJSON issues a request against the test app and decodes the JSON response
// into out (when out is non-nil).
func (ts *testServer) doJSON(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

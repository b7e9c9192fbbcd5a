package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

// testAPI is a router wired to real services over a temp SQLite database
type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	images *testhelpers.MemoryImageStore
}

func SetupTestRouter(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLiteDB(t)
	images := testhelpers.NewMemoryImageStore()
	authSvc := service.NewAuthService(db, "test-secret", time.Hour, nil)
	catalog := service.NewCatalogService(db)
	users := service.NewUserService(db)
	recipes := service.NewRecipeService(db, catalog, images)

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.ErrorHandler())
	SetupAPI(router, Services{
		Auth:          authSvc,
		Users:         users,
		Subscriptions: service.NewSubscriptionService(db, users, recipes),
		Catalog:       catalog,
		Recipes:       recipes,
		Relations:     service.NewRelationService(db),
	})

	return &testAPI{router: router, db: db, auth: authSvc, images: images}
}

// CreateTestUserAndToken creates a user and signs a token for it
func (a *testAPI) CreateTestUserAndToken(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, a.db, username)
	token, err := a.auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// PerformRequestWithToken sends body as JSON; an empty token is anonymous
func (a *testAPI) PerformRequestWithToken(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

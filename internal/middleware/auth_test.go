package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/auth"
	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
	"github.com/syriashof/shof/pkg/crypto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func newAuthStack(t *testing.T, db *gorm.DB) *auth.Service {
	t.Helper()

	sessions, err := auth.NewSessionService(db, auth.SessionConfig{})
	require.NoError(t, err)
	verification, err := auth.NewVerificationService(db, auth.VerificationConfig{})
	require.NoError(t, err)
	resets, err := auth.NewResetService(db, sessions, auth.ResetConfig{})
	require.NoError(t, err)

	svc, err := auth.NewService(db, sessions, verification, resets, nil, auth.Config{})
	require.NoError(t, err)
	return svc
}

func signIn(t *testing.T, db *gorm.DB, svc *auth.Service, email string, admin bool) (string, *models.User) {
	t.Helper()

	hash, err := crypto.HashPassword("sup3r-secret")
	require.NoError(t, err)
	user := &models.User{Email: email, Password: hash, IsVerified: true, IsAdmin: admin}
	require.NoError(t, db.Create(user).Error)

	result, err := svc.Login(context.Background(), email, "sup3r-secret")
	require.NoError(t, err)
	return result.SessionToken, user
}

func TestExtractTokenPrecedence(t *testing.T) {
	body := `{"sessionToken":"from-body","action":"logout"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth?sessionToken=from-query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer from-bearer")
	req.Header.Set("x-session-token", "from-header")

	c, _ := newTestContext(t, req)
	require.Equal(t, "from-body", ExtractToken(c))

	// The body must still be readable after the peek.
	raw, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestExtractTokenFallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer from-bearer")
	req.Header.Set("x-session-token", "from-header")
	c, _ := newTestContext(t, req)
	require.Equal(t, "from-bearer", ExtractToken(c))

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("x-session-token", "from-header")
	c, _ = newTestContext(t, req)
	require.Equal(t, "from-header", ExtractToken(c))

	req = httptest.NewRequest(http.MethodGet, "/api/profile?sessionToken=from-query", nil)
	c, _ = newTestContext(t, req)
	require.Equal(t, "from-query", ExtractToken(c))

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	c, _ = newTestContext(t, req)
	require.Empty(t, ExtractToken(c))
}

func TestExtractTokenIgnoresNonJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("sessionToken=from-form"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-session-token", "from-header")

	c, _ := newTestContext(t, req)
	require.Equal(t, "from-header", ExtractToken(c))
}

func TestRequireSessionAttachesPrincipal(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthStack(t, db)
	token, user := signIn(t, db, svc, "member@example.com", false)

	r := gin.New()
	r.GET("/protected", RequireSession(svc), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		session, ok := CurrentSession(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": current.ID, "session": session.ID})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.ID)
}

func TestRequireSessionRejectsMissingAndInvalidTokens(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthStack(t, db)

	r := gin.New()
	r.GET("/protected", RequireSession(svc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Authentication required"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("x-session-token", "bogus")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"Invalid or expired session"}`, w.Body.String())
}

func TestRequireSessionRejectsBannedUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthStack(t, db)
	token, user := signIn(t, db, svc, "suspended@example.com", false)

	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"banned": true, "ban_reason": "abuse"}).Error)

	r := gin.New()
	r.GET("/protected", RequireSession(svc), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("x-session-token", token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Account banned: abuse"}`, w.Body.String())
}

func TestOptionalSessionAllowsAnonymous(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthStack(t, db)
	token, user := signIn(t, db, svc, "maybe@example.com", false)

	r := gin.New()
	r.GET("/open", OptionalSession(svc), func(c *gin.Context) {
		if current, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"id": current.ID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": ""})
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":""}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("x-session-token", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), user.ID)
}

func TestRequireAdmin(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthStack(t, db)
	memberToken, _ := signIn(t, db, svc, "plain@example.com", false)
	adminToken, _ := signIn(t, db, svc, "root@example.com", true)

	r := gin.New()
	r.GET("/admin", RequireSession(svc), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	// Misconfigured chain without RequireSession: no principal at all.
	r.GET("/bare", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("x-session-token", memberToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Admin access required"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("x-session-token", adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/bare", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

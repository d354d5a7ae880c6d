package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/models"
	"marketplace/internal/service"
)

func newTestRouter(accounts *service.AccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", authMiddleware(accounts), func(c *gin.Context) {
		sub := subjectFrom(c)
		c.JSON(http.StatusOK, gin.H{"subject_id": sub.ID.String(), "role": sub.Role})
	})
	return router
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	accounts := service.NewAccountService(nil, nil, "test-secret", 1)
	router := newTestRouter(accounts)

	user := &models.User{ID: uuid.New(), Email: "a@b.c", Role: models.RoleMerchant}
	token, err := accounts.GenerateToken(user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID.String())
	assert.Contains(t, w.Body.String(), models.RoleMerchant)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	accounts := service.NewAccountService(nil, nil, "test-secret", 1)
	router := newTestRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	accounts := service.NewAccountService(nil, nil, "test-secret", 1)
	router := newTestRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

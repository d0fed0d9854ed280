package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofraeats/marketplace/pkg/models"
)

func newRegisterRouter(repo *mockRepository, authSubject string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(repo, "test"))

	router := gin.New()
	router.POST("/register", func(c *gin.Context) {
		if authSubject != "" {
			c.Set("auth_subject", authSubject)
		}
		c.Next()
	}, handler.Register)
	return router
}

func postRegister(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_CreatesProfileOnFirstContact(t *testing.T) {
	repo := newMockRepository()
	authID := uuid.New()
	router := newRegisterRouter(repo, authID.String())

	w := postRegister(t, router, gin.H{"full_name": "Omar Nabil"})
	require.Equal(t, http.StatusOK, w.Code)

	created, err := repo.GetByAuthID(context.Background(), authID)
	require.NoError(t, err)
	assert.Equal(t, "Omar Nabil", created.FullName)
	assert.Equal(t, models.RoleCustomer, created.Role)
	assert.True(t, created.IsActive)
}

func TestRegister_RepeatKeepsIdentityAndRole(t *testing.T) {
	repo := newMockRepository()
	existing := seedProfile(repo, models.RoleProvider)
	router := newRegisterRouter(repo, existing.AuthID.String())

	w := postRegister(t, router, gin.H{"full_name": "Omar N."})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.GetByAuthID(context.Background(), existing.AuthID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, stored.ID)
	assert.Equal(t, "Omar N.", stored.FullName)
	assert.Equal(t, models.RoleProvider, stored.Role)
}

func TestRegister_RequiresFullName(t *testing.T) {
	repo := newMockRepository()
	router := newRegisterRouter(repo, uuid.New().String())

	w := postRegister(t, router, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_RequiresAuthSubject(t *testing.T) {
	repo := newMockRepository()
	router := newRegisterRouter(repo, "")

	w := postRegister(t, router, gin.H{"full_name": "Omar Nabil"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

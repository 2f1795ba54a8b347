package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// no auth middleware: the listing is public
	r.GET("/users", handler.ListUsers)
	return r
}

func TestListUsersSuccessWithoutCredential(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo)
	router := setupUserRouter(handler)

	userRepo.On("ListUsers", mock.Anything).Return([]models.User{{ID: 1, Login: "alice"}, {ID: 2, Login: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "alice", resp[0].Login)
	userRepo.AssertExpectations(t)
}

func TestListUsersRepoError(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo)
	router := setupUserRouter(handler)

	userRepo.On("ListUsers", mock.Anything).Return(([]models.User)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestListUsersEmptyIsArray(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo)
	router := setupUserRouter(handler)

	userRepo.On("ListUsers", mock.Anything).Return(([]models.User)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	userRepo.AssertExpectations(t)
}

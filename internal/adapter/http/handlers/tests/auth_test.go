package tests

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/core/domain"
	"todoapi/pkg/apierrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	authMock := new(authServiceMock)
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	authMock.On("Register", mock.Anything, domain.RegisterInput{Username: "ana", Email: "ana@example.com", Password: "secret1"}).
		Return(domain.AuthToken{Token: "tok", ExpiresAt: expires, User: domain.User{ID: 3, Username: "ana", Role: domain.RoleUser}}, nil).Once()

	rec := doRequest(newRouter(new(todoServiceMock), authMock), http.MethodPost, "/api/auth/register", map[string]string{
		"username": "ana",
		"email":    "ana@example.com",
		"password": "secret1",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var got dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.ExpiresAt)
	assert.Equal(t, int64(3), got.User.ID)
	authMock.AssertExpectations(t)
}

func TestAuthHandler_Register_Failures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    int
		details []string
	}{
		{"validation", &domain.ValidationError{Errors: []string{"Email is not valid."}}, http.StatusBadRequest, []string{"Email is not valid."}},
		{"duplicate", domain.ErrUserExists, http.StatusConflict, nil},
		{"store down", errors.New("connection refused"), http.StatusInternalServerError, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			authMock := new(authServiceMock)
			authMock.On("Register", mock.Anything, mock.Anything).Return(domain.AuthToken{}, tc.err).Once()

			rec := doRequest(newRouter(new(todoServiceMock), authMock), http.MethodPost, "/api/auth/register", map[string]string{
				"username": "ana",
				"email":    "nope",
				"password": "secret1",
			})

			require.Equal(t, tc.want, rec.Code)
			var got apierrors.JsonErr
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want, got.ErrDetails.Code)
			assert.Equal(t, tc.details, got.ErrDetails.Details)
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	authMock := new(authServiceMock)
	authMock.On("Login", mock.Anything, domain.LoginInput{Username: "ana", Password: "bad"}).
		Return(domain.AuthToken{}, domain.ErrInvalidCredentials).Once()

	rec := doRequest(newRouter(new(todoServiceMock), authMock), http.MethodPost, "/api/auth/login", map[string]string{
		"username": "ana",
		"password": "bad",
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var got apierrors.JsonErr
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Invalid username or password", got.ErrDetails.Message)
	authMock.AssertExpectations(t)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	authMock := new(authServiceMock)

	rec := doRequest(newRouter(new(todoServiceMock), authMock), http.MethodPost, "/api/auth/login", map[string]string{"username": "ana"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	authMock.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Validate(t *testing.T) {
	authMock := new(authServiceMock)
	authMock.On("CurrentUser", mock.Anything, tokenUser).
		Return(&domain.User{ID: tokenUser, Username: "ana", Email: "ana@example.com", Role: domain.RoleUser}, nil).Once()
	router := newRouter(new(todoServiceMock), authMock)

	rec := doRequest(router, http.MethodGet, "/api/auth/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got dto.UserItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ana", got.Username)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", strings.NewReader(""))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	authMock.AssertExpectations(t)
}

func TestHealthHandler_MemoryStorageIsHealthy(t *testing.T) {
	router := newRouter(new(todoServiceMock), new(authServiceMock))

	rec := doRequest(router, http.MethodGet, "/api/health/report", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		AppName string            `json:"app_name"`
		Status  map[string]string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "todo-api", got.AppName)
	assert.Equal(t, map[string]string{"mysql": "disabled", "redis": "disabled"}, got.Status)
}

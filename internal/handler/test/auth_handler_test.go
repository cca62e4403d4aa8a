package test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voxablog/internal/apperror"
	"voxablog/internal/models"
	"voxablog/internal/repository"
	"voxablog/internal/service"
)

func TestRegisterHandler_Success(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Register", mock.Anything, repository.CreateUserRequest{
		Email:    "jane@x.com",
		Password: "pw123",
		Role:     "user",
	}).Return(&models.User{UserID: "u-1", Email: "jane@x.com", Role: "user"}, nil)

	rr := env.do(http.MethodPost, "/api/register", "", map[string]string{
		"email":    "jane@x.com",
		"password": "pw123",
		"role":     "user",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, rr.Body.String())
	env.auth.AssertExpectations(t)
}

func TestRegisterHandler_Conflict(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperror.New(apperror.KindConflict, "User already exists"))

	rr := env.do(http.MethodPost, "/api/register", "", map[string]string{
		"email":    "jane@x.com",
		"password": "pw123",
	})

	assertAuthError(t, rr, http.StatusBadRequest, "conflict", "User already exists")
}

func TestRegisterHandler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"missing email", map[string]string{"password": "pw123"}, "email is required"},
		{"missing password", map[string]string{"email": "jane@x.com"}, "password is required"},
		{"unknown role", map[string]string{"email": "jane@x.com", "password": "pw123", "role": "Author"}, "role must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rr := env.do(http.MethodPost, "/api/register", "", tt.body)

			assertAuthError(t, rr, http.StatusBadRequest, "validation_error", tt.message)
			env.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

// The handler only checks presence; the service trims and owns the rules for
// what an identifier may look like.
func TestRegisterHandler_PassesIdentifierThrough(t *testing.T) {
	for _, email := range []string{" jane@x.com ", "jane"} {
		t.Run(email, func(t *testing.T) {
			env := newTestEnv()
			env.auth.On("Register", mock.Anything, repository.CreateUserRequest{
				Email:    email,
				Password: "pw123",
			}).Return(&models.User{UserID: "u-1", Email: "jane@x.com", Role: "user"}, nil)

			rr := env.do(http.MethodPost, "/api/register", "", map[string]string{
				"email":    email,
				"password": "pw123",
			})

			assert.Equal(t, http.StatusCreated, rr.Code)
			env.auth.AssertExpectations(t)
		})
	}
}

func TestLoginHandler_PaddedEmail(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Login", mock.Anything, service.LoginRequest{Email: " jane@x.com ", Password: "pw123"}).
		Return(&service.LoginResult{Token: "tok", Email: "jane@x.com", Role: "user"}, nil)

	rr := env.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    " jane@x.com ",
		"password": "pw123",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	env.auth.AssertExpectations(t)
}

func TestRegisterHandler_MalformedBody(t *testing.T) {
	env := newTestEnv()

	rr := env.do(http.MethodPost, "/api/register", "", "not an object")

	assertAuthError(t, rr, http.StatusBadRequest, "validation_error", "Invalid request body")
}

func TestLoginHandler_RoleMismatch(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Login", mock.Anything, service.LoginRequest{Email: "jane@x.com", Password: "pw123", Role: "admin"}).
		Return(nil, apperror.NotFound("Invalid credentials (email or role mismatch)"))

	rr := env.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    "jane@x.com",
		"password": "pw123",
		"role":     "admin",
	})

	assertAuthError(t, rr, http.StatusNotFound, "not_found", "email or role mismatch")
}

func TestLoginHandler_Success(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Login", mock.Anything, service.LoginRequest{Email: "jane@x.com", Password: "pw123", Role: "user"}).
		Return(&service.LoginResult{Token: "signed.jwt.token", Email: "jane@x.com", Role: "user"}, nil)

	rr := env.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    "jane@x.com",
		"password": "pw123",
		"role":     "user",
	})

	require.Equal(t, http.StatusOK, rr.Code)

	var response service.LoginResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "signed.jwt.token", response.Token)
	assert.Equal(t, "jane@x.com", response.Email)
	assert.Equal(t, "user", response.Role)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	env := newTestEnv()

	env.auth.On("Login", mock.Anything, mock.Anything).
		Return(nil, apperror.New(apperror.KindInvalidCredentials, "Invalid credentials"))

	rr := env.do(http.MethodPost, "/api/login", "", map[string]string{
		"email":    "jane@x.com",
		"password": "wrong",
	})

	assertAuthError(t, rr, http.StatusBadRequest, "invalid_credentials", "Invalid credentials")
}

func TestResetPasswordHandler(t *testing.T) {
	env := newTestEnv()

	env.auth.On("ResetPassword", mock.Anything, "ghost@x.com", "new-pass").
		Return(apperror.NotFound("User not found"))
	env.auth.On("ResetPassword", mock.Anything, "jane@x.com", "new-pass").Return(nil)

	rr := env.do(http.MethodPost, "/api/reset-password", "", map[string]string{
		"email":       "ghost@x.com",
		"newPassword": "new-pass",
	})
	assertAuthError(t, rr, http.StatusNotFound, "not_found", "User not found")

	rr = env.do(http.MethodPost, "/api/reset-password", "", map[string]string{
		"email":       "jane@x.com",
		"newPassword": "new-pass",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Password updated successfully"}`, rr.Body.String())
}

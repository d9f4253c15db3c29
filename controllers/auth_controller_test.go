package controllers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/utils"
)

func TestSignupLogsUserIn(t *testing.T) {
	e := newEnv(t)

	w := e.postForm("/auth/signup/", nil, url.Values{
		"username":  {"neo"},
		"password":  {"follow the white rabbit"},
		"password2": {"follow the white rabbit"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var sessionSet bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			sessionSet = true
		}
	}
	assert.True(t, sessionSet, "session cookie should be set after signup")

	user, err := e.store.UserByUsername(context.Background(), "neo")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(user.PasswordHash, "follow the white rabbit"))
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	e := newEnv(t)
	e.user(t, "neo")

	w := e.postForm("/auth/signup/", nil, url.Values{
		"username":  {"neo"},
		"password":  {"strong enough"},
		"password2": {"strong enough"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already taken")
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	e := newEnv(t)

	w := e.postForm("/auth/signup/", nil, url.Values{
		"username":  {"neo"},
		"password":  {"strong enough"},
		"password2": {"different"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "do not match")
}

func TestLoginFollowsNextParameter(t *testing.T) {
	e := newEnv(t)

	hash, err := utils.HashPassword("open sesame!")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), &models.User{
		Username:     "ali",
		PasswordHash: hash,
	}))

	w := e.postForm("/auth/login/", nil, url.Values{
		"username": {"ali"},
		"password": {"open sesame!"},
		"next":     {"/create/"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)

	hash, err := utils.HashPassword("open sesame!")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), &models.User{
		Username:     "ali",
		PasswordHash: hash,
	}))

	w := e.postForm("/auth/login/", nil, url.Values{
		"username": {"ali"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid username or password")
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	e := newEnv(t)

	hash, err := utils.HashPassword("open sesame!")
	require.NoError(t, err)
	require.NoError(t, e.store.CreateUser(context.Background(), &models.User{
		Username:     "ali",
		PasswordHash: hash,
	}))

	w := e.postForm("/auth/login/", nil, url.Values{
		"username": {"ali"},
		"password": {"open sesame!"},
		"next":     {"https://evil.example/"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	e := newEnv(t)
	user := e.user(t, "neo")

	w := e.get("/auth/logout/", sessionCookie(t, user))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie should be expired on logout")
}

package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/config"
	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

// AuthController is the identity subsystem: signup, login, logout.
// Everything else only consumes the session cookie it issues.
type AuthController struct {
	store storage.Storage
}

func NewAuthController(store storage.Storage) *AuthController {
	return &AuthController{store: store}
}

// LoginForm renders the login page, keeping the next parameter so a
// successful login can return the user where they came from.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.html", gin.H{
		"Next": ctx.Query("next"),
	})
}

// Login checks credentials and issues the session cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")
	next := ctx.PostForm("next")

	fail := func() {
		render(ctx, http.StatusOK, "login.html", gin.H{
			"Next":  next,
			"Error": "invalid username or password",
		})
	}

	if username == "" || password == "" {
		fail()
		return
	}
	user, err := a.store.UserByUsername(ctx.Request.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail()
			return
		}
		internalError(ctx, err)
		return
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		fail()
		return
	}

	if err := a.setSession(ctx, user); err != nil {
		internalError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, safeNext(next))
}

// SignupForm renders the registration page.
func (a *AuthController) SignupForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "signup.html", gin.H{"Username": ""})
}

// Signup registers a user and logs them straight in.
func (a *AuthController) Signup(ctx *gin.Context) {
	username := strings.TrimSpace(utils.Sanitize(ctx.PostForm("username")))
	password := ctx.PostForm("password")
	confirm := ctx.PostForm("password2")

	fail := func(msg string) {
		render(ctx, http.StatusOK, "signup.html", gin.H{
			"Error":    msg,
			"Username": username,
		})
	}

	switch {
	case username == "":
		fail("username is required")
		return
	case len(username) > 64:
		fail("username is too long")
		return
	case len(password) < 8:
		fail("password must be at least 8 characters")
		return
	case password != confirm:
		fail("passwords do not match")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		internalError(ctx, err)
		return
	}
	user := &models.User{Username: username, PasswordHash: hash}
	if err := a.store.CreateUser(ctx.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			fail("username is already taken")
			return
		}
		internalError(ctx, err)
		return
	}

	if err := a.setSession(ctx, user); err != nil {
		internalError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

// Logout drops the session cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) setSession(ctx *gin.Context, user *models.User) error {
	ttl := time.Duration(config.Get().SessionTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		return err
	}
	ctx.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}

// safeNext only follows same-site relative paths; anything else falls
// back to the home page.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}

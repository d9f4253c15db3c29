package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

const (
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "postline_session"
	// ContextUserKey stores the resolved user in the request context.
	ContextUserKey = "current_user"
	// LoginPath is where unauthenticated users are sent, with the
	// original path in the next parameter.
	LoginPath = "/auth/login/"
)

// Identity resolves the session cookie into a user and stores it in the
// request context. Anonymous requests pass through untouched; a stale
// or invalid cookie is treated as anonymous.
func Identity(store storage.Storage) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookie)
		if err != nil || token == "" {
			ctx.Next()
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}
		user, err := store.UserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// LoginRequired redirects anonymous requests to the login page carrying
// the originally requested path so the login flow can send them back.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentUser(ctx); !ok {
			// keep the path unescaped the way the login form expects it
			ctx.Redirect(http.StatusFound, LoginPath+"?next="+ctx.Request.URL.RequestURI())
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUser returns the authenticated user resolved by Identity.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

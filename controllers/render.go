package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/utils"
)

// render executes a template with the shared page context. The current
// user, when present, is always available to templates.
func render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.CurrentUser(ctx); ok {
		data["CurrentUser"] = user
	}
	ctx.HTML(status, name, data)
}

// NotFound renders the shared 404 page; it doubles as the NoRoute
// handler.
func NotFound(ctx *gin.Context) {
	render(ctx, http.StatusNotFound, "404.html", gin.H{"Path": ctx.Request.URL.Path})
}

func internalError(ctx *gin.Context, err error) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf("request failed path=%s err=%v", ctx.Request.URL.Path, err)
	}
	ctx.String(http.StatusInternalServerError, "internal error")
	ctx.Abort()
}

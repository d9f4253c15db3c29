package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/config"
	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

// FollowController serves the personalized feed and the follow and
// unfollow actions.
type FollowController struct {
	store storage.Storage
}

func NewFollowController(store storage.Storage) *FollowController {
	return &FollowController{store: store}
}

// Feed lists posts by every author the acting user follows, newest
// first.
func (f *FollowController) Feed(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath+"?next="+ctx.Request.URL.RequestURI())
		return
	}

	rctx := ctx.Request.Context()
	total, err := f.store.CountPostsByFollowedAuthors(rctx, user.ID)
	if err != nil {
		internalError(ctx, err)
		return
	}
	page := utils.Paginate(ctx.Query("page"), total, config.Get().PageSize)
	posts, err := f.store.PostsByFollowedAuthors(rctx, user.ID, page.Offset, page.Size)
	if err != nil {
		internalError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "follow.html", gin.H{
		"Posts": posts,
		"Page":  page,
	})
}

// Follow subscribes the acting user to an author. Re-following is a
// quiet no-op and self-follow creates nothing; both end back on the
// profile page.
func (f *FollowController) Follow(ctx *gin.Context) {
	user, author, ok := f.resolve(ctx)
	if !ok {
		return
	}

	if user.ID != author.ID {
		if err := f.store.Follow(ctx.Request.Context(), user.ID, author.ID); err != nil &&
			!errors.Is(err, storage.ErrSelfFollow) {
			internalError(ctx, err)
			return
		}
	}
	ctx.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// Unfollow removes the edge. Unlike Follow this is not idempotent: a
// missing edge is a 404, matching the behaviour callers rely on.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	user, author, ok := f.resolve(ctx)
	if !ok {
		return
	}

	if err := f.store.Unfollow(ctx.Request.Context(), user.ID, author.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(ctx)
			return
		}
		internalError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

func (f *FollowController) resolve(ctx *gin.Context) (*models.User, *models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, middleware.LoginPath+"?next="+ctx.Request.URL.RequestURI())
		return nil, nil, false
	}
	author, err := f.store.UserByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(ctx)
			return nil, nil, false
		}
		internalError(ctx, err)
		return nil, nil, false
	}
	return user, author, true
}

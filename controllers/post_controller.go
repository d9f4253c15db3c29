package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/config"
	"github.com/avolkov/postline/forms"
	"github.com/avolkov/postline/middleware"
	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

// PostController serves every post-centric page: the listings, the
// detail view, creation, editing and commenting.
type PostController struct {
	store storage.Storage
}

func NewPostController(store storage.Storage) *PostController {
	return &PostController{store: store}
}

// Index renders the home listing of all posts, newest first.
func (p *PostController) Index(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	total, err := p.store.CountPosts(rctx)
	if err != nil {
		internalError(ctx, err)
		return
	}
	page := utils.Paginate(ctx.Query("page"), total, config.Get().PageSize)
	posts, err := p.store.Posts(rctx, page.Offset, page.Size)
	if err != nil {
		internalError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "index.html", gin.H{
		"Posts": posts,
		"Page":  page,
	})
}

// GroupPosts renders one group's listing.
func (p *PostController) GroupPosts(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	group, err := p.store.GroupBySlug(rctx, ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(ctx)
			return
		}
		internalError(ctx, err)
		return
	}

	total, err := p.store.CountPostsByGroup(rctx, group.ID)
	if err != nil {
		internalError(ctx, err)
		return
	}
	page := utils.Paginate(ctx.Query("page"), total, config.Get().PageSize)
	posts, err := p.store.PostsByGroup(rctx, group.ID, page.Offset, page.Size)
	if err != nil {
		internalError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "group_list.html", gin.H{
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

// Profile renders an author's page with their posts and follow state.
func (p *PostController) Profile(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	author, err := p.store.UserByUsername(rctx, ctx.Param("username"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(ctx)
			return
		}
		internalError(ctx, err)
		return
	}

	total, err := p.store.CountPostsByAuthor(rctx, author.ID)
	if err != nil {
		internalError(ctx, err)
		return
	}
	page := utils.Paginate(ctx.Query("page"), total, config.Get().PageSize)
	posts, err := p.store.PostsByAuthor(rctx, author.ID, page.Offset, page.Size)
	if err != nil {
		internalError(ctx, err)
		return
	}

	following := false
	if user, ok := middleware.CurrentUser(ctx); ok {
		following, err = p.store.IsFollowing(rctx, user.ID, author.ID)
		if err != nil {
			internalError(ctx, err)
			return
		}
	}
	followers, err := p.store.CountFollowers(rctx, author.ID)
	if err != nil {
		internalError(ctx, err)
		return
	}

	render(ctx, http.StatusOK, "profile.html", gin.H{
		"Author":    author,
		"Posts":     posts,
		"Page":      page,
		"Following": following,
		"Followers": followers,
	})
}

// PostDetail renders one post with its comments and the comment form.
func (p *PostController) PostDetail(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	comments, err := p.store.CommentsByPost(rctx, post.ID)
	if err != nil {
		internalError(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "post_detail.html", gin.H{
		"Post":     post,
		"Comments": comments,
	})
}

// Create renders the post form on GET and persists a valid submission
// on POST. The acting identity becomes the author no matter what the
// submission contains.
func (p *PostController) Create(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		// LoginRequired guards the route; this is a backstop.
		ctx.Redirect(http.StatusFound, middleware.LoginPath+"?next="+ctx.Request.URL.RequestURI())
		return
	}

	rctx := ctx.Request.Context()
	groups, err := p.store.Groups(rctx)
	if err != nil {
		internalError(ctx, err)
		return
	}

	if ctx.Request.Method == http.MethodGet {
		render(ctx, http.StatusOK, "create_post.html", gin.H{
			"Form":   &forms.PostForm{Errors: map[string]string{}},
			"Groups": groups,
		})
		return
	}

	form := forms.ParsePostForm(ctx)
	if !form.Validate(rctx, p.store) {
		render(ctx, http.StatusOK, "create_post.html", gin.H{
			"Form":   form,
			"Groups": groups,
		})
		return
	}

	post := form.NewPost()
	post.AuthorID = user.ID
	if form.Image != nil {
		url, err := utils.SaveImage(form.Image, config.Get().UploadsDir)
		if err != nil {
			internalError(ctx, err)
			return
		}
		post.Image = url
	}
	if err := p.store.CreatePost(rctx, post); err != nil {
		internalError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// Edit lets the author change a post's text, group and image. Anyone
// else lands back on the detail page with nothing mutated and no error
// raised.
func (p *PostController) Edit(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	user, authed := middleware.CurrentUser(ctx)
	if !authed || user.ID != post.AuthorID {
		ctx.Redirect(http.StatusFound, detailURL)
		return
	}

	rctx := ctx.Request.Context()
	groups, err := p.store.Groups(rctx)
	if err != nil {
		internalError(ctx, err)
		return
	}

	if ctx.Request.Method == http.MethodGet {
		form := &forms.PostForm{
			Text:    post.Text,
			GroupID: post.GroupID,
			Errors:  map[string]string{},
		}
		render(ctx, http.StatusOK, "create_post.html", gin.H{
			"Form":   form,
			"Groups": groups,
			"Post":   post,
			"IsEdit": true,
		})
		return
	}

	form := forms.ParsePostForm(ctx)
	if !form.Validate(rctx, p.store) {
		render(ctx, http.StatusOK, "create_post.html", gin.H{
			"Form":   form,
			"Groups": groups,
			"Post":   post,
			"IsEdit": true,
		})
		return
	}

	form.Apply(post)
	if form.Image != nil {
		url, err := utils.SaveImage(form.Image, config.Get().UploadsDir)
		if err != nil {
			internalError(ctx, err)
			return
		}
		post.Image = url
	}
	if err := p.store.UpdatePost(rctx, post); err != nil {
		internalError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, detailURL)
}

// AddComment attaches a comment from the acting identity to the path's
// post. Valid or not, the response is a redirect back to the detail
// page; comment errors are never surfaced inline.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	user, authed := middleware.CurrentUser(ctx)
	if !authed {
		ctx.Redirect(http.StatusFound, middleware.LoginPath+"?next="+ctx.Request.URL.RequestURI())
		return
	}

	form := forms.ParseCommentForm(ctx)
	if form.Validate() {
		comment := form.NewComment()
		comment.AuthorID = user.ID
		comment.PostID = post.ID
		if err := p.store.CreateComment(ctx.Request.Context(), comment); err != nil {
			internalError(ctx, err)
			return
		}
	}

	ctx.Redirect(http.StatusFound, detailURL)
}

// loadPost resolves the :id path parameter; on failure it has already
// written the 404 page.
func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		NotFound(ctx)
		return nil, false
	}
	post, err := p.store.PostByID(ctx.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			NotFound(ctx)
			return nil, false
		}
		internalError(ctx, err)
		return nil, false
	}
	return post, true
}

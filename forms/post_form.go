// Package forms validates submitted fields for posts and comments.
// Forms never touch authorship: the caller attaches the acting user
// before persisting, so a submission cannot smuggle in an author.
package forms

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage"
	"github.com/avolkov/postline/utils"
)

// PostForm carries the raw post submission plus field-level errors
// collected by Validate.
type PostForm struct {
	Text    string
	GroupID *uint
	Image   *multipart.FileHeader

	Errors map[string]string
}

// ParsePostForm reads the post fields from the request. A missing image
// field is fine; a malformed group id is kept as an error for Validate
// to report.
func ParsePostForm(ctx *gin.Context) *PostForm {
	form := &PostForm{
		Text:   ctx.PostForm("text"),
		Errors: make(map[string]string),
	}

	if raw := strings.TrimSpace(ctx.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			form.Errors["group"] = "select a valid group"
		} else {
			gid := uint(id)
			form.GroupID = &gid
		}
	}

	file, err := ctx.FormFile("image")
	if err == nil {
		form.Image = file
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		form.Errors["image"] = "could not read the uploaded file"
	}

	return form
}

// Validate checks the fields and records per-field messages. It has no
// side effects; nothing is persisted on failure.
func (f *PostForm) Validate(ctx context.Context, store storage.Storage) bool {
	f.Text = strings.TrimSpace(utils.Sanitize(f.Text))
	if f.Text == "" {
		f.Errors["text"] = "text is required"
	}

	if f.GroupID != nil {
		if _, err := store.GroupByID(ctx, *f.GroupID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				f.Errors["group"] = "select a valid group"
			} else {
				f.Errors["group"] = "could not verify the group"
			}
		}
	}

	if f.Image != nil {
		if err := utils.ValidateImage(f.Image); err != nil {
			f.Errors["image"] = "upload a valid image file"
		}
	}

	return len(f.Errors) == 0
}

// GroupSelected reports whether the form currently points at the given
// group; templates use it to mark the selected option.
func (f *PostForm) GroupSelected(id uint) bool {
	return f.GroupID != nil && *f.GroupID == id
}

// NewPost builds an unsaved post from the validated fields. The caller
// sets the author and, if an image was submitted, the stored image path.
func (f *PostForm) NewPost() *models.Post {
	return &models.Post{
		Text:    f.Text,
		GroupID: f.GroupID,
	}
}

// Apply mutates only the submitted fields on an existing post; author
// and creation timestamp stay untouched.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.GroupID
}

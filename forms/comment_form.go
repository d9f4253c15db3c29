package forms

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/utils"
)

// CommentForm carries a raw comment submission.
type CommentForm struct {
	Text string

	Errors map[string]string
}

func ParseCommentForm(ctx *gin.Context) *CommentForm {
	return &CommentForm{
		Text:   ctx.PostForm("text"),
		Errors: make(map[string]string),
	}
}

func (f *CommentForm) Validate() bool {
	f.Text = strings.TrimSpace(utils.Sanitize(f.Text))
	if f.Text == "" {
		f.Errors["text"] = "text is required"
	}
	return len(f.Errors) == 0
}

// NewComment builds an unsaved comment; the caller attaches author and
// parent post.
func (f *CommentForm) NewComment() *models.Comment {
	return &models.Comment{Text: f.Text}
}

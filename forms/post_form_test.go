package forms

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/postline/models"
	"github.com/avolkov/postline/storage/memory"
)

func TestPostFormRequiresText(t *testing.T) {
	store := memory.New()

	form := &PostForm{Text: "   ", Errors: map[string]string{}}
	assert.False(t, form.Validate(context.Background(), store))
	assert.Contains(t, form.Errors, "text")

	// markup-only text sanitizes down to nothing
	form = &PostForm{Text: "<script>alert(1)</script>", Errors: map[string]string{}}
	assert.False(t, form.Validate(context.Background(), store))
	assert.Contains(t, form.Errors, "text")
}

func TestPostFormUnknownGroup(t *testing.T) {
	store := memory.New()

	gid := uint(42)
	form := &PostForm{Text: "hello", GroupID: &gid, Errors: map[string]string{}}
	assert.False(t, form.Validate(context.Background(), store))
	assert.Contains(t, form.Errors, "group")
}

func TestPostFormResolvesGroup(t *testing.T) {
	store := memory.New()
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, store.CreateGroup(context.Background(), group))

	form := &PostForm{Text: "hello", GroupID: &group.ID, Errors: map[string]string{}}
	assert.True(t, form.Validate(context.Background(), store))

	post := form.NewPost()
	assert.Equal(t, "hello", post.Text)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
	// authorship is never the form's business
	assert.Zero(t, post.AuthorID)
}

func TestPostFormApplyLeavesAuthorAlone(t *testing.T) {
	store := memory.New()

	post := &models.Post{Text: "before", AuthorID: 7}
	form := &PostForm{Text: "after", Errors: map[string]string{}}
	require.True(t, form.Validate(context.Background(), store))
	form.Apply(post)

	assert.Equal(t, "after", post.Text)
	assert.Nil(t, post.GroupID)
	assert.Equal(t, uint(7), post.AuthorID)
}

func TestPostFormRejectsNonImage(t *testing.T) {
	store := memory.New()

	form := &PostForm{
		Text:   "hello",
		Image:  fileHeader(t, "notes.png", []byte("definitely not pixels")),
		Errors: map[string]string{},
	}
	assert.False(t, form.Validate(context.Background(), store))
	assert.Contains(t, form.Errors, "image")
}

func TestPostFormAcceptsRealImage(t *testing.T) {
	store := memory.New()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	form := &PostForm{
		Text:   "hello",
		Image:  fileHeader(t, "pic.png", buf.Bytes()),
		Errors: map[string]string{},
	}
	assert.True(t, form.Validate(context.Background(), store), form.Errors)
}

func TestCommentFormValidation(t *testing.T) {
	form := &CommentForm{Text: "  ", Errors: map[string]string{}}
	assert.False(t, form.Validate())
	assert.Contains(t, form.Errors, "text")

	form = &CommentForm{Text: "nice post", Errors: map[string]string{}}
	require.True(t, form.Validate())
	comment := form.NewComment()
	assert.Equal(t, "nice post", comment.Text)
	assert.Zero(t, comment.AuthorID)
	assert.Zero(t, comment.PostID)
}

// fileHeader builds a real multipart.FileHeader from raw bytes.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	_, header, err := req.FormFile("image")
	require.NoError(t, err)
	return header
}

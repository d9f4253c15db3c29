package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/postline/cache"
)

type cachingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *cachingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cachingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache serves GET responses from the store, keyed by the exact
// request URI (path and query, so each listing page caches on its own).
// Only successful responses are stored; expiry is the sole invalidation
// apart from an explicit Clear on the store.
func PageCache(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}
		key := ctx.Request.URL.RequestURI()

		if body, ok := store.Get(ctx.Request.Context(), key); ok {
			ctx.Data(http.StatusOK, "text/html; charset=utf-8", body)
			ctx.Abort()
			return
		}

		writer := &cachingWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = writer
		ctx.Next()

		if writer.Status() == http.StatusOK {
			store.Set(ctx.Request.Context(), key, writer.body.Bytes(), ttl)
		}
	}
}

package static

import (
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Serve returns middleware that answers any request whose path resolves
// to a file in dir with that file. HEAD and OPTIONS get headers only.
// Requests that match no file continue down the chain and end in the
// router's 404.
//
// The content type comes from the file extension. Unknown extensions are
// sniffed from the first bytes of the file.
func Serve(dir *Dir, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := c.Request

		f, info, err := dir.Open(r.URL.Path)
		if err != nil {
			logger.Debug("static.not_found", "method", r.Method, "path", r.URL.Path, "root", dir.Root(), "error", err)
			c.Next()
			return
		}
		defer f.Close()

		if r.Method == http.MethodOptions {
			h := c.Writer.Header()
			if ctype := mime.TypeByExtension(path.Ext(info.Name())); ctype != "" {
				h.Set("Content-Type", ctype)
			}
			h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
			c.Status(http.StatusOK)
			c.Writer.WriteHeaderNow()
			c.Abort()
			return
		}

		http.ServeContent(c.Writer, r, info.Name(), info.ModTime(), f)
		c.Abort()
	}
}

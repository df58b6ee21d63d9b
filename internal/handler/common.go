package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/inkwell/blog/internal/middleware"

	"github.com/gin-gonic/gin"
)

// render renders a page template with the current user added to data
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.CurrentUser(c); ok {
		data["CurrentUser"] = user
	}
	c.HTML(status, name, data)
}

// pageError records err for the request log and answers with a plain 500
func pageError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// safeNext accepts only same-site relative redirect targets
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

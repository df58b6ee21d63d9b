package handler

import (
	"errors"
	"net/http"

	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/middleware"
	"github.com/inkwell/blog/internal/service"
	"github.com/inkwell/blog/internal/utils"

	"github.com/gin-gonic/gin"
)

// ArticleHandler article pages
type ArticleHandler struct {
	articleService *service.ArticleService
}

// NewArticleHandler creates an ArticleHandler
func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

// Index GET /
func (h *ArticleHandler) Index(c *gin.Context) {
	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		pageError(c, err)
		return
	}
	render(c, http.StatusOK, "index.html", gin.H{"Articles": articles})
}

// Show GET /article/:id
func (h *ArticleHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		c.String(http.StatusNotFound, "Article not found")
		return
	}

	article, err := h.articleService.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		c.String(http.StatusNotFound, "Article not found")
		return
	}
	if err != nil {
		pageError(c, err)
		return
	}

	render(c, http.StatusOK, "article.html", gin.H{"Title": article.Title, "Article": article})
}

// CreatePage GET /create_article
func (h *ArticleHandler) CreatePage(c *gin.Context) {
	render(c, http.StatusOK, "create_article.html", gin.H{"Title": "New article", "Form": &dto.CreateArticleRequest{}})
}

// Create POST /create_article
func (h *ArticleHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
		return
	}

	var req dto.CreateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.createForm(c, &req, utils.FormatValidationError(err))
		return
	}

	_, err := h.articleService.Create(c.Request.Context(), userID, &req)
	switch {
	case errors.Is(err, service.ErrAuthenticationRequired):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
		return
	case errors.Is(err, service.ErrValidation):
		h.createForm(c, &req, err.Error())
		return
	case err != nil:
		pageError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *ArticleHandler) createForm(c *gin.Context, req *dto.CreateArticleRequest, message string) {
	render(c, http.StatusOK, "create_article.html", gin.H{"Title": "New article", "Form": req, "Error": message})
}

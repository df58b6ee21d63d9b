package handler

import (
	"errors"
	"net/http"

	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/service"
	"github.com/inkwell/blog/internal/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler read-only JSON API
type APIHandler struct {
	articleService *service.ArticleService
}

// NewAPIHandler creates an APIHandler
func NewAPIHandler(articleService *service.ArticleService) *APIHandler {
	return &APIHandler{articleService: articleService}
}

func toArticleResponse(article *models.Article) dto.ArticleResponse {
	return dto.ArticleResponse{
		ID:      article.ID,
		Title:   article.Title,
		Content: article.Content,
	}
}

// ListArticles GET /api/articles
func (h *APIHandler) ListArticles(c *gin.Context) {
	articles, err := h.articleService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.InternalError(c, "internal server error")
		return
	}

	resp := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		resp = append(resp, toArticleResponse(&articles[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetArticle GET /api/article/:id
func (h *APIHandler) GetArticle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		utils.NotFound(c, "article not found")
		return
	}

	article, err := h.articleService.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		utils.NotFound(c, "article not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		utils.InternalError(c, "internal server error")
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(article))
}

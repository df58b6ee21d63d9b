package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/metrics"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/repository"

	"github.com/sirupsen/logrus"
)

// ArticleService publishing and reading articles
type ArticleService struct {
	articles ArticleStore
	uploads  *UploadService
	logger   *logrus.Logger
}

// NewArticleService creates an ArticleService
func NewArticleService(articles ArticleStore, uploads *UploadService, logger *logrus.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		uploads:  uploads,
		logger:   logger,
	}
}

// Create stores the image and inserts the article for authorID. authorID 0 means no session.
// The image is written first; if the insert fails the file stays behind.
func (s *ArticleService) Create(ctx context.Context, authorID uint, req *dto.CreateArticleRequest) (*models.Article, error) {
	if authorID == 0 {
		return nil, ErrAuthenticationRequired
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, validationError("title is required")
	}
	if utf8.RuneCountInString(req.Title) > models.TitleMaxLength {
		return nil, validationError("title must be at most %d characters", models.TitleMaxLength)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationError("content is required")
	}
	if req.Image == nil {
		return nil, validationError("image is required")
	}

	filename, err := s.uploads.Save(ctx, req.Image, UploadSourceArticle)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:         req.Title,
		Content:       req.Content,
		ImageFilename: filename,
		AuthorID:      authorID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		s.logger.WithFields(logrus.Fields{
			"image_filename": filename,
			"author_id":      authorID,
		}).WithError(err).Warn("article insert failed, image left orphaned")
		return nil, fmt.Errorf("create article: %w", err)
	}

	metrics.ArticlesCreatedTotal.Inc()
	return article, nil
}

// List returns all articles in storage order
func (s *ArticleService) List(ctx context.Context) ([]models.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Get returns one article or ErrNotFound
func (s *ArticleService) Get(ctx context.Context, id uint) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return article, nil
}

package repository

import (
	"context"

	"github.com/inkwell/blog/internal/models"

	"gorm.io/gorm"
)

// ArticleRepository article data access
type ArticleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates an ArticleRepository
func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts article
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	return translateError(r.db.WithContext(ctx).Omit("Author").Create(article).Error)
}

// GetByID finds an article with its author
func (r *ArticleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Preload("Author").First(&article, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &article, nil
}

// List returns every article in storage order
func (r *ArticleRepository) List(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := r.db.WithContext(ctx).Preload("Author").Order("id").Find(&articles).Error
	return articles, err
}

package dto

import "mime/multipart"

// CreateArticleRequest article form, submitted as multipart/form-data
type CreateArticleRequest struct {
	Title   string                `form:"title" binding:"required,max=150"`
	Content string                `form:"content" binding:"required"`
	Image   *multipart.FileHeader `form:"image" binding:"required"`
}

// ArticleResponse public JSON view of an article
type ArticleResponse struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UploadImageResponse standalone upload result
type UploadImageResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

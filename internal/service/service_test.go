package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inkwell/blog/internal/config"
	"github.com/inkwell/blog/internal/dto"
	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/repository"
	"github.com/inkwell/blog/internal/storage"
	"github.com/inkwell/blog/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	uploadDir string
	users     *repository.UserRepository
	sessions  *repository.SessionRepository
	auth      *AuthService
	articles  *ArticleService
	uploads   *UploadService
	logs      *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := models.OpenDB(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "blog.db")})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploadDir := filepath.Join(dir, "uploads")
	provider, err := storage.NewLocalProvider(uploadDir)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	uploads := NewUploadService(provider)

	return &fixture{
		db:        db,
		uploadDir: uploadDir,
		users:     users,
		sessions:  sessions,
		auth:      NewAuthService(users, sessions, utils.NewJWTManager("test-secret", time.Hour)),
		articles:  NewArticleService(repository.NewArticleRepository(db), uploads, logger),
		uploads:   uploads,
		logs:      hook,
	}
}

func (f *fixture) register(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Username: username, Password: password})
	require.NoError(t, err)
	return user
}

// fileHeader builds a parsed multipart file header. name overrides the parsed filename so
// that raw client-supplied names reach the service unchanged.
func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	_, fh, err := req.FormFile("image")
	require.NoError(t, err)

	fh.Filename = name
	return fh
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, "alice", "wonderland")
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "wonderland", user.PasswordHash)

	_, err := f.auth.Register(ctx, &dto.RegisterRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := f.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.NoError(t, utils.CheckPassword("wonderland", stored.PasswordHash), "first user's password unchanged")

	_, err = f.auth.Register(ctx, &dto.RegisterRequest{Username: "", Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.auth.Register(ctx, &dto.RegisterRequest{Username: "bob", Password: ""})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.auth.Register(ctx, &dto.RegisterRequest{Username: "bob", Password: " \t "})
	assert.ErrorIs(t, err, ErrValidation)

	exists, err := f.users.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice", "wonderland")

	result, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Token)

	got, session, err := f.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, result.Session.ID, session.ID)

	require.NoError(t, f.auth.Logout(ctx, session.ID))
	_, _, err = f.auth.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired, "token is useless after logout")
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "wonderland")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "wonderland"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var count int64
	require.NoError(t, f.db.Model(&models.Session{}).Count(&count).Error)
	assert.Zero(t, count, "failed logins never create sessions")
}

func TestAuthService_AuthenticateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "wonderland")

	_, _, err := f.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	result, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)

	f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = f.auth.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = f.sessions.Get(ctx, result.Session.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "expired session is removed")

	assert.ErrorIs(t, f.auth.Logout(ctx, ""), ErrAuthenticationRequired)
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "wonderland")

	_, err := f.auth.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)

	purged, err := f.auth.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	f.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	purged, err = f.auth.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestArticleService_CreateRequiresAuthor(t *testing.T) {
	f := newFixture(t)

	_, err := f.articles.Create(context.Background(), 0, &dto.CreateArticleRequest{
		Title:   "valid",
		Content: "valid",
		Image:   fileHeader(t, "pic.png", "png"),
	})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = f.articles.Create(context.Background(), 0, &dto.CreateArticleRequest{})
	assert.ErrorIs(t, err, ErrAuthenticationRequired, "checked before payload validation")

	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArticleService_Validation(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice", "wonderland")

	tests := []struct {
		name string
		req  dto.CreateArticleRequest
	}{
		{name: "blank title", req: dto.CreateArticleRequest{Title: "  ", Content: "c", Image: fileHeader(t, "a.png", "x")}},
		{name: "long title", req: dto.CreateArticleRequest{Title: strings.Repeat("я", 151), Content: "c", Image: fileHeader(t, "a.png", "x")}},
		{name: "no content", req: dto.CreateArticleRequest{Title: "t", Image: fileHeader(t, "a.png", "x")}},
		{name: "no image", req: dto.CreateArticleRequest{Title: "t", Content: "c"}},
		{name: "unusable filename", req: dto.CreateArticleRequest{Title: "t", Content: "c", Image: fileHeader(t, "../..", "x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.articles.Create(context.Background(), user.ID, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	article, err := f.articles.Create(context.Background(), user.ID, &dto.CreateArticleRequest{
		Title: strings.Repeat("я", 150), Content: "c", Image: fileHeader(t, "a.png", "x"),
	})
	require.NoError(t, err, "150 characters is allowed")
	assert.NotZero(t, article.ID)
}

func TestArticleService_CreateAndRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "alice", "wonderland")

	article, err := f.articles.Create(ctx, user.ID, &dto.CreateArticleRequest{
		Title:   "Hello",
		Content: "First post",
		Image:   fileHeader(t, "../../etc/passwd", "not really a password file"),
	})
	require.NoError(t, err)
	assert.Equal(t, "etc_passwd", article.ImageFilename)
	assert.Equal(t, user.ID, article.AuthorID)

	data, err := os.ReadFile(filepath.Join(f.uploadDir, "etc_passwd"))
	require.NoError(t, err)
	assert.Equal(t, "not really a password file", string(data))

	got, err := f.articles.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "First post", got.Content)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)

	list, err := f.articles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, article.ID, list[0].ID)

	_, err = f.articles.Get(ctx, article.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleService_OrphanedImageOnInsertFailure(t *testing.T) {
	f := newFixture(t)

	// author 999 does not exist, so the foreign key rejects the insert after the image is written
	_, err := f.articles.Create(context.Background(), 999, &dto.CreateArticleRequest{
		Title: "t", Content: "c", Image: fileHeader(t, "orphan.png", "x"),
	})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(f.uploadDir, "orphan.png"))
	assert.NoError(t, statErr)

	entry := f.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "orphan.png", entry.Data["image_filename"])
}

func TestUploadService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name, err := f.uploads.Save(ctx, fileHeader(t, "My Holiday.jpg", "jpeg"), UploadSourceEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "My_Holiday.jpg", name)

	obj, err := f.uploads.Open(ctx, name)
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, int64(4), obj.ContentLength)

	for _, bad := range []string{"", "../blog.db", "missing.png", "My Holiday.jpg"} {
		_, err := f.uploads.Open(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound, "name %q", bad)
	}

	_, err = f.uploads.Save(ctx, nil, UploadSourceEndpoint)
	assert.ErrorIs(t, err, ErrValidation)
}

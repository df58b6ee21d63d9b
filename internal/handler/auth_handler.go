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

// AuthHandler registration and login pages
type AuthHandler struct {
	authService *service.AuthService
	cookie      middleware.SessionCookie
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authService *service.AuthService, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// RegisterPage GET /register
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": &dto.RegisterRequest{}})
}

// Register POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerForm(c, &req, utils.FormatValidationError(err))
		return
	}

	_, err := h.authService.Register(c.Request.Context(), &req)
	switch {
	case errors.Is(err, service.ErrConflict):
		c.String(http.StatusBadRequest, "Username already taken")
		return
	case errors.Is(err, service.ErrValidation):
		h.registerForm(c, &req, err.Error())
		return
	case err != nil:
		pageError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) registerForm(c *gin.Context, req *dto.RegisterRequest, message string) {
	form := &dto.RegisterRequest{Username: req.Username}
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": form, "Error": message})
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  &dto.LoginRequest{},
		"Next":  safeNext(c.Query("next")),
	})
}

// Login POST /login. Wrong credentials re-render the form without a session.
func (h *AuthHandler) Login(c *gin.Context) {
	next := safeNext(c.Query("next"))

	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginForm(c, &req, next, utils.FormatValidationError(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.loginForm(c, &req, next, "")
		return
	}
	if err != nil {
		pageError(c, err)
		return
	}

	h.cookie.Set(c, result.Token)
	if next == "" {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) loginForm(c *gin.Context, req *dto.LoginRequest, next, message string) {
	form := &dto.LoginRequest{Username: req.Username}
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": form, "Next": next, "Error": message})
}

// Logout GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil && !errors.Is(err, service.ErrAuthenticationRequired) {
		pageError(c, err)
		return
	}

	h.cookie.Clear(c)
	c.Redirect(http.StatusFound, "/")
}

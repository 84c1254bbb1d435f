package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/middleware"
	"github.com/ErlanBelekov/swinggity/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	VerifyEmail(ctx context.Context, code string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	CheckAuth(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase   authUsecaser
	secureCookies bool
	logger        *slog.Logger
	now           func() time.Time
}

func NewAuthHandler(authUsecase authUsecaser, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase:   authUsecase,
		secureCookies: secureCookies,
		logger:        logger.With("component", "auth_handler"),
		now:           time.Now,
	}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// POST /api/auth/signup
// A taken email gets the same 400 shape as any other rejected signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case validationFailed(c, err):
		case errors.Is(err, domain.ErrEmailTaken):
			fail(c, http.StatusBadRequest, errSignupRejected)
		default:
			h.serverError(c, "signup", err)
		}
		return
	}

	h.setSessionCookie(c, res.Token, res.ExpiresAt)
	succeed(c, http.StatusCreated, msgSignup, res.User)
}

// POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	user, err := h.authUsecase.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case validationFailed(c, err):
		case errors.Is(err, domain.ErrTokenInvalid):
			fail(c, http.StatusBadRequest, errInvalidCode)
		default:
			h.serverError(c, "verify email", err)
		}
		return
	}

	succeed(c, http.StatusOK, msgVerified, user)
}

// POST /api/auth/login
// Unknown email, wrong password and malformed email produce identical bodies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			fail(c, http.StatusBadRequest, errInvalidCredentials)
			return
		}
		h.serverError(c, "login", err)
		return
	}

	h.setSessionCookie(c, res.Token, res.ExpiresAt)
	succeed(c, http.StatusOK, msgLogin, res.User)
}

// POST /api/auth/logout
// Only the cookie is cleared; the signed token stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	succeed(c, http.StatusOK, msgLogout, nil)
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	if err := h.authUsecase.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if !validationFailed(c, err) {
			h.serverError(c, "forgot password", err)
		}
		return
	}

	succeed(c, http.StatusOK, msgForgotPassword, nil)
}

// POST /api/auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	err := h.authUsecase.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		switch {
		case validationFailed(c, err):
		case errors.Is(err, domain.ErrTokenInvalid):
			fail(c, http.StatusBadRequest, errInvalidResetToken)
		default:
			h.serverError(c, "reset password", err)
		}
		return
	}

	succeed(c, http.StatusOK, msgResetPassword, nil)
}

// GET /api/auth/check-auth
// Requires the Session middleware.
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	user, err := h.authUsecase.CheckAuth(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			fail(c, http.StatusBadRequest, errUserNotFound)
			return
		}
		h.serverError(c, "check auth", err)
		return
	}

	c.JSON(http.StatusOK, envelope{Success: true, User: newUserResponse(user)})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(expiresAt.Sub(h.now()).Seconds()),
		Secure:   h.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) serverError(c *gin.Context, op string, err error) {
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	fail(c, http.StatusInternalServerError, errServer)
}

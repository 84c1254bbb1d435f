package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/ErlanBelekov/swinggity/internal/validation"
	"github.com/gin-gonic/gin"
)

// envelope is the body of every auth response.
type envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *userResponse `json:"user,omitempty"`
	Errors  []fieldError  `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Rules   []string `json:"rules,omitempty"`
}

// userResponse never carries the password hash or pending tokens.
type userResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func newUserResponse(u *domain.User) *userResponse {
	r := &userResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if !u.LastLogin.IsZero() {
		lastLogin := u.LastLogin
		r.LastLogin = &lastLogin
	}
	return r
}

func succeed(c *gin.Context, status int, message string, user *domain.User) {
	body := envelope{Success: true, Message: message}
	if user != nil {
		body.User = newUserResponse(user)
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// validationFailed writes a 400 for a *validation.Error and reports whether
// err was one.
func validationFailed(c *gin.Context, err error) bool {
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		return false
	}
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: vErr.Message,
		Errors:  []fieldError{{Field: vErr.Field, Message: vErr.Message, Rules: vErr.Rules}},
	})
	return true
}

package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/handler"
	"github.com/ErlanBelekov/swinggity/internal/transport/http/middleware"
	"github.com/ErlanBelekov/swinggity/internal/usecase"
	"github.com/ErlanBelekov/swinggity/internal/validation"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	signup         func(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error)
	verifyEmail    func(ctx context.Context, code string) (*domain.User, error)
	login          func(ctx context.Context, email, password string) (*usecase.AuthResult, error)
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, token, password string) error
	checkAuth      func(ctx context.Context, userID string) (*domain.User, error)
}

func (f *fakeAuthUsecase) Signup(ctx context.Context, in usecase.SignupInput) (*usecase.AuthResult, error) {
	return f.signup(ctx, in)
}

func (f *fakeAuthUsecase) VerifyEmail(ctx context.Context, code string) (*domain.User, error) {
	return f.verifyEmail(ctx, code)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.AuthResult, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	return f.forgotPassword(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, token, password string) error {
	return f.resetPassword(ctx, token, password)
}

func (f *fakeAuthUsecase) CheckAuth(ctx context.Context, userID string) (*domain.User, error) {
	return f.checkAuth(ctx, userID)
}

func newTestEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewAuthHandler(uc, true, logger)

	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/verify-email", h.VerifyEmail)
	r.POST("/forgot-password", h.ForgotPassword)
	r.POST("/reset-password/:token", h.ResetPassword)
	r.GET("/check-auth", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		c.Next()
	}, h.CheckAuth)
	return r
}

func post(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type responseBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    map[string]any  `json:"user"`
	Errors  []responseError `json:"errors"`
}

type responseError struct {
	Field   string   `json:"field"`
	Message string   `json:"message"`
	Rules   []string `json:"rules"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) responseBody {
	t.Helper()
	var body responseBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func testUser() *domain.User {
	code := "abc123"
	return &domain.User{
		ID:                "user-1",
		Email:             "ada@example.com",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		PasswordHash:      "$2a$10$secret",
		VerificationToken: &code,
		CreatedAt:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func authResult() *usecase.AuthResult {
	return &usecase.AuthResult{User: testUser(), Token: "signed.jwt.value", ExpiresAt: time.Now().Add(7 * 24 * time.Hour)}
}

// ---- Signup ----

func TestSignup_Success_Returns201WithCookie(t *testing.T) {
	var got usecase.SignupInput
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, in usecase.SignupInput) (*usecase.AuthResult, error) {
			got = in
			return authResult(), nil
		},
	}

	w := post(t, newTestEngine(uc), "/signup",
		`{"email":"ada@example.com","password":"Abc12345!","firstName":"Ada","lastName":"Lovelace"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if got.Email != "ada@example.com" || got.FirstName != "Ada" || got.LastName != "Lovelace" || got.Password != "Abc12345!" {
		t.Errorf("usecase got %+v", got)
	}

	body := decode(t, w)
	if !body.Success || body.Message != "User created successfully" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.User["email"] != "ada@example.com" {
		t.Errorf("user = %v", body.User)
	}
	for _, leaked := range []string{"$2a$10$secret", "abc123", "password"} {
		if strings.Contains(w.Body.String(), leaked) {
			t.Errorf("response leaks %q: %s", leaked, w.Body.String())
		}
	}

	c := sessionCookie(w)
	if c == nil {
		t.Fatal("session cookie not set")
	}
	if c.Value != "signed.jwt.value" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("unexpected cookie %+v", c)
	}
	if c.MaxAge < 7*24*60*60-5 || c.MaxAge > 7*24*60*60 {
		t.Errorf("max age = %d, want ~7d", c.MaxAge)
	}
}

func TestSignup_ValidationError_Returns400WithField(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (*usecase.AuthResult, error) {
			_, err := validation.Password("abcdefgh")
			return nil, err
		},
	}

	w := post(t, newTestEngine(uc), "/signup", `{"email":"ada@example.com","password":"abcdefgh"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decode(t, w)
	if body.Success || len(body.Errors) != 1 || body.Errors[0].Field != "password" {
		t.Fatalf("unexpected body %+v", body)
	}
	want := []string{validation.RuleUppercase, validation.RuleNumber, validation.RuleSpecial}
	if strings.Join(body.Errors[0].Rules, ",") != strings.Join(want, ",") {
		t.Errorf("rules = %v, want %v", body.Errors[0].Rules, want)
	}
	if sessionCookie(w) != nil {
		t.Error("no cookie on failure")
	}
}

func TestSignup_EmailTaken_Returns400Generic(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (*usecase.AuthResult, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	w := post(t, newTestEngine(uc), "/signup", `{"email":"ada@example.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decode(t, w)
	if strings.Contains(strings.ToLower(body.Message), "exist") || strings.Contains(strings.ToLower(body.Message), "taken") {
		t.Errorf("message hints at existing account: %q", body.Message)
	}
}

func TestSignup_InvalidJSON_Returns400(t *testing.T) {
	w := post(t, newTestEngine(&fakeAuthUsecase{}), "/signup", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_InternalError_Returns500Generic(t *testing.T) {
	uc := &fakeAuthUsecase{
		signup: func(context.Context, usecase.SignupInput) (*usecase.AuthResult, error) {
			return nil, errors.New("send verification email: provider down")
		},
	}

	w := post(t, newTestEngine(uc), "/signup", `{}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := decode(t, w); body.Message != "Server error" {
		t.Errorf("message = %q", body.Message)
	}
	if strings.Contains(w.Body.String(), "provider") {
		t.Error("internal detail leaked")
	}
}

// ---- Login ----

func TestLogin_FailuresAreByteIdentical(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, _ string) (*usecase.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	r := newTestEngine(uc)

	wrongPassword := post(t, r, "/login", `{"email":"ada@example.com","password":"Wrong123!"}`)
	unknownEmail := post(t, r, "/login", `{"email":"ghost@example.com","password":"Abc12345!"}`)

	if wrongPassword.Code != http.StatusBadRequest || unknownEmail.Code != wrongPassword.Code {
		t.Fatalf("status = %d / %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("bodies differ:\n%s\n%s", wrongPassword.Body, unknownEmail.Body)
	}
}

func TestLogin_Success_SetsCookie(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, email, password string) (*usecase.AuthResult, error) {
			if email != "ada@example.com" || password != "Abc12345!" {
				t.Errorf("got %q / %q", email, password)
			}
			return authResult(), nil
		},
	}

	w := post(t, newTestEngine(uc), "/login", `{"email":"ada@example.com","password":"Abc12345!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if c := sessionCookie(w); c == nil || c.Value != "signed.jwt.value" {
		t.Errorf("cookie = %+v", c)
	}
}

func TestLogin_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(context.Context, string, string) (*usecase.AuthResult, error) {
			return nil, errors.New("db down")
		},
	}
	w := post(t, newTestEngine(uc), "/login", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---- Logout ----

func TestLogout_ClearsCookie(t *testing.T) {
	w := post(t, newTestEngine(&fakeAuthUsecase{}), "/logout", ``)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	c := sessionCookie(w)
	if c == nil || c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
}

// ---- VerifyEmail ----

func TestVerifyEmail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "Email verified successfully"},
		{"invalid code", domain.ErrTokenInvalid, http.StatusBadRequest, "Invalid or expired verification code"},
		{"blank code", &validation.Error{Field: "code", Message: "Verification code is mandatory"}, http.StatusBadRequest, "Verification code is mandatory"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				verifyEmail: func(_ context.Context, code string) (*domain.User, error) {
					if code != "abc123" {
						t.Errorf("code = %q", code)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					u := testUser()
					u.IsVerified = true
					return u, nil
				},
			}

			w := post(t, newTestEngine(uc), "/verify-email", `{"code":"abc123"}`)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decode(t, w)
			if body.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMsg)
			}
			if tt.err == nil && body.User["isVerified"] != true {
				t.Errorf("user = %v", body.User)
			}
		})
	}
}

// ---- ForgotPassword ----

func TestForgotPassword_SameResponseForKnownAndUnknown(t *testing.T) {
	uc := &fakeAuthUsecase{
		forgotPassword: func(context.Context, string) error { return nil },
	}
	r := newTestEngine(uc)

	known := post(t, r, "/forgot-password", `{"email":"ada@example.com"}`)
	unknown := post(t, r, "/forgot-password", `{"email":"ghost@example.com"}`)

	if known.Code != http.StatusOK || known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ: %d %s / %d %s", known.Code, known.Body, unknown.Code, unknown.Body)
	}
}

func TestForgotPassword_InvalidEmail_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		forgotPassword: func(_ context.Context, email string) error {
			_, err := validation.Email(email)
			return err
		},
	}

	w := post(t, newTestEngine(uc), "/forgot-password", `{"email":"nope"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body.Message != "Please enter a valid email address" {
		t.Errorf("message = %q", body.Message)
	}
}

// ---- ResetPassword ----

func TestResetPassword_PassesPathToken(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, token, password string) error {
			if token != "tok123" || password != "N3w-Password!" {
				t.Errorf("got %q / %q", token, password)
			}
			return nil
		},
	}

	w := post(t, newTestEngine(uc), "/reset-password/tok123", `{"password":"N3w-Password!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decode(t, w); body.Message != "Password reset successful" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestResetPassword_InvalidToken_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(context.Context, string, string) error { return domain.ErrTokenInvalid },
	}

	w := post(t, newTestEngine(uc), "/reset-password/used", `{"password":"N3w-Password!"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body.Message != "Invalid or expired reset token" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestPasswordOver72Bytes_Returns400WithField(t *testing.T) {
	long := "Abc12345!" + strings.Repeat("a", 64)
	uc := &fakeAuthUsecase{
		signup: func(_ context.Context, in usecase.SignupInput) (*usecase.AuthResult, error) {
			_, err := validation.Password(in.Password)
			return nil, err
		},
		resetPassword: func(_ context.Context, _, password string) error {
			_, err := validation.Password(password)
			return err
		},
	}
	r := newTestEngine(uc)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"signup", "/signup", `{"email":"ada@example.com","firstName":"Ada","lastName":"Lovelace","password":"` + long + `"}`},
		{"reset", "/reset-password/tok123", `{"password":"` + long + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, tt.path, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			body := decode(t, w)
			if len(body.Errors) != 1 || body.Errors[0].Field != "password" {
				t.Fatalf("unexpected body %+v", body)
			}
			if body.Errors[0].Message != "Password must be at most 72 bytes" {
				t.Errorf("message = %q", body.Errors[0].Message)
			}
			if strings.Join(body.Errors[0].Rules, ",") != validation.RuleMaxLength {
				t.Errorf("rules = %v", body.Errors[0].Rules)
			}
		})
	}
}

// ---- CheckAuth ----

func TestCheckAuth(t *testing.T) {
	uc := &fakeAuthUsecase{
		checkAuth: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != "user-1" {
				return nil, domain.ErrUserNotFound
			}
			return testUser(), nil
		},
	}

	w := httptest.NewRecorder()
	newTestEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check-auth", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decode(t, w); !body.Success || body.User["id"] != "user-1" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestCheckAuth_UserGone_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		checkAuth: func(context.Context, string) (*domain.User, error) { return nil, domain.ErrUserNotFound },
	}

	w := httptest.NewRecorder()
	newTestEngine(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check-auth", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body.Message != "User not found" {
		t.Errorf("message = %q", body.Message)
	}
}

// ---- CSRF token endpoint ----

func TestCSRFToken_ReturnsCookieValue(t *testing.T) {
	h := handler.NewCSRFHandler(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := gin.New()
	r.GET("/csrf-token", h.Token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf-token", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.CSRFCookieName || cookies[0].Value != body.CSRFToken {
		t.Errorf("cookie %+v does not match body %q", cookies, body.CSRFToken)
	}
}

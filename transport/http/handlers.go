package http

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edushare/auth/core"
	"github.com/edushare/auth/service"
)

// AuthHandlers contains the HTTP handlers for every auth endpoint.
type AuthHandlers struct {
	auth *service.AuthService
}

// NewAuthHandlers creates the handler set.
func NewAuthHandlers(auth *service.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// SignupRequest mirrors the signup form. DateOfBirth uses YYYY-MM-DD.
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username" binding:"required,max=30"`
	FirstName   string `json:"firstName" binding:"required,max=30"`
	LastName    string `json:"lastName" binding:"required,max=30"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
}

// SigninRequest carries signin credentials.
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OtpVerificationRequest carries an email and the submitted code.
type OtpVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ForgotPasswordRequest carries the OTP-backed password reset input.
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ErrorResponse is the structured body for every failed request.
type ErrorResponse struct {
	Error     core.Kind `json:"error"`
	Message   string    `json:"message"`
	Timestamp int64     `json:"timestamp"`
}

// minimumSignupAge matches the registration policy of the platform.
const minimumSignupAge = 13

// Signup handles POST /auth/signup. A successful signup is accepted with
// 202 and no body; the session only starts after OTP verification.
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	if msg, ok := checkPasswordPolicy(req.Password); !ok {
		writeError(c, core.ValidationError(msg))
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		writeError(c, core.ValidationError("dateOfBirth must be YYYY-MM-DD"))
		return
	}
	if msg, ok := checkDateOfBirth(dob); !ok {
		writeError(c, core.ValidationError(msg))
		return
	}

	err = h.auth.Signup(c.Request.Context(), service.SignupParams{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Signin handles POST /auth/signin.
func (h *AuthHandlers) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	pair, err := h.auth.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// SendOtp handles GET /auth/otp/send?email=...
func (h *AuthHandlers) SendOtp(c *gin.Context) {
	email := c.Query("email")
	if !isEmail(email) {
		writeError(c, core.ValidationError("email query parameter must be a valid address"))
		return
	}

	if err := h.auth.SendOtp(c.Request.Context(), email); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// VerifyOtp handles POST /auth/otp/verify.
func (h *AuthHandlers) VerifyOtp(c *gin.Context) {
	var req OtpVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	pair, err := h.auth.VerifyOtp(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var pair core.TokenPair
	if err := c.ShouldBindJSON(&pair); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	fresh, err := h.auth.Refresh(c.Request.Context(), pair)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fresh)
}

// Logout handles POST /auth/logout.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var pair core.TokenPair
	if err := c.ShouldBindJSON(&pair); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), pair); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.ValidationError(err.Error()))
		return
	}

	if msg, ok := checkPasswordPolicy(req.NewPassword); !ok {
		writeError(c, core.ValidationError(msg))
		return
	}

	pair, err := h.auth.ForgotPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Me handles GET /api/me behind the bearer middleware.
func (h *AuthHandlers) Me(c *gin.Context) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		writeError(c, core.NewError(core.KindInvalidCredentials))
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"firstName":     user.FirstName,
		"lastName":      user.LastName,
		"dateOfBirth":   user.DateOfBirth.Format("2006-01-02"),
		"emailVerified": user.EmailVerified,
	})
}

// writeError maps business errors 1:1 to their status and kind; everything
// else is logged with detail and surfaces as a generic internal failure.
func writeError(c *gin.Context, err error) {
	var business *core.Error
	if !errors.As(err, &business) {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		business = core.NewError(core.KindInternal)
	}

	c.JSON(business.Status(), ErrorResponse{
		Error:     business.Kind,
		Message:   business.Message,
		Timestamp: time.Now().UnixMilli(),
	})
}

// abortWithError is writeError for middleware, stopping the chain.
func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

func checkPasswordPolicy(password string) (string, bool) {
	if len(password) < 8 || len(password) > 24 {
		return "password must be 8-24 characters", false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return "password must contain a lowercase letter, an uppercase letter and a digit", false
	}
	return "", true
}

func isEmail(address string) bool {
	if address == "" {
		return false
	}
	_, err := mail.ParseAddress(address)
	return err == nil
}

func checkDateOfBirth(dob time.Time) (string, bool) {
	now := time.Now()
	if !dob.Before(now) {
		return "dateOfBirth must be in the past", false
	}
	if dob.AddDate(minimumSignupAge, 0, 0).After(now) {
		return "you must be at least 13 years old", false
	}
	return "", true
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/common"
	"github.com/dmitrijs2005/pdfier/internal/devserver/auth"
	"github.com/dmitrijs2005/pdfier/internal/devserver/store"
)

const (
	otpValidity   = 10 * time.Minute
	resetValidity = 15 * time.Minute
	minPassword   = 6

	// limits that are not configurable on the dev backend
	indexedDocumentsLimit = 20
	wordConversionsLimit  = 10
)

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	// Plan is "basic" unless "premium" is asked for.
	Plan models.PlanType `json:"plan"`
}

func (h *HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !strings.Contains(req.Email, "@") {
		fail(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < minPassword {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not create account")
		return
	}

	plan, daily := models.PlanBasic, h.cfg.DailyLimitBasic
	if req.Plan == models.PlanPremium {
		plan, daily = models.PlanPremium, h.cfg.DailyLimitPremium
	}

	user, err := h.store.CreateUser(req.Username, req.Email, hash, plan, models.UsageMetrics{
		PDFProcessedLimitDaily:    daily,
		RAGQueriesLimitMonthly:    h.cfg.MonthlyQueryLimit,
		RAGIndexedDocumentsLimit:  indexedDocumentsLimit,
		WordConversionsLimitDaily: wordConversionsLimit,
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			fail(c, http.StatusBadRequest, "Username or email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, "Could not create account")
		return
	}

	if err := h.issueOTP(c.Request.Context(), user, store.PurposeSignup); err != nil {
		fail(c, http.StatusInternalServerError, "Could not send verification code")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful. Check your email for the verification code.",
		"user_id": user.ID,
	})
}

// issueOTP stores a fresh code. There is no mailer, so the code is logged.
func (h *HandlerSet) issueOTP(ctx context.Context, user store.User, purpose store.Purpose) error {
	code, err := h.otp()
	if err != nil {
		return err
	}
	h.store.SetOTP(user.ID, code, purpose, otpValidity)
	h.log.Info(ctx, "otp issued", "user_id", user.ID, "email", user.Email, "purpose", purpose, "code", code)
	return nil
}

type verifyRequest struct {
	UserID string `json:"user_id" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

func (h *HandlerSet) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	purpose, err := h.store.CheckOTP(req.UserID, strings.TrimSpace(req.OTP))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	if purpose == store.PurposeReset {
		h.store.AllowReset(req.UserID, resetValidity)
		c.JSON(http.StatusOK, gin.H{"message": "Code verified, you can set a new password"})
		return
	}

	if _, err := h.store.UpdateUser(req.UserID, func(u *store.User) error {
		u.Verified = true
		return nil
	}); err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

type resendRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
}

func (h *HandlerSet) ResendOTP(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.GetUser(req.UserID)
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		fail(c, http.StatusBadRequest, "Email does not match")
		return
	}

	purpose, pending := h.store.PendingPurpose(user.ID)
	if !pending {
		if user.Verified {
			fail(c, http.StatusBadRequest, "Email already verified")
			return
		}
		purpose = store.PurposeSignup
	}

	if err := h.issueOTP(c.Request.Context(), user, purpose); err != nil {
		fail(c, http.StatusInternalServerError, "Could not send verification code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "A new verification code was sent"})
}

type forgotRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *HandlerSet) Forgot(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.FindByLogin(req.Email)
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err := h.issueOTP(c.Request.Context(), user, store.PurposeReset); err != nil {
		fail(c, http.StatusInternalServerError, "Could not send reset code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset code sent to your email", "user_id": user.ID})
}

type resetRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *HandlerSet) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < minPassword {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if !h.store.ConsumeReset(req.UserID) {
		fail(c, http.StatusForbidden, "Verify the reset code first")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.bcryptCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not update password")
		return
	}
	if _, err := h.store.UpdateUser(req.UserID, func(u *store.User) error {
		u.PasswordHash = hash
		// the code proved ownership of the mailbox
		u.Verified = true
		return nil
	}); err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// Login takes form fields username and password. The username may also be
// the account email.
func (h *HandlerSet) Login(c *gin.Context) {
	username, password := c.PostForm("username"), c.PostForm("password")
	if username == "" {
		missing(c, "body", "username")
		return
	}
	if password == "" {
		missing(c, "body", "password")
		return
	}

	user, err := h.store.FindByLogin(username)
	if err != nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		fail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if !user.Verified {
		fail(c, http.StatusForbidden, "Email not verified")
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, h.secret, h.cfg.AccessTokenValidityDuration)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	h.store.SaveRefreshToken(refreshToken, user.ID, h.cfg.RefreshTokenValidityDuration)

	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnauthorized, "Refresh token missing")
		return
	}

	userID, err := h.store.LookupRefreshToken(req.RefreshToken)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	accessToken, err := auth.GenerateToken(userID, h.secret, h.cfg.AccessTokenValidityDuration)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "token_type": "bearer"})
}

func (h *HandlerSet) Me(c *gin.Context) {
	user, err := h.store.Current(currentUserID(c))
	if err != nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	view := user.View()
	view.IPAddress = c.ClientIP()
	c.JSON(http.StatusOK, view)
}

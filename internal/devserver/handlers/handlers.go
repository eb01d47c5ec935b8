// Package handlers serves the pdfier REST API from the in-memory store.
package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/pdfier/internal/devserver/config"
	"github.com/dmitrijs2005/pdfier/internal/devserver/store"
	"github.com/dmitrijs2005/pdfier/internal/logging"
)

type HandlerSet struct {
	cfg    *config.Config
	log    logging.Logger
	store  *store.Store
	secret []byte

	// test seams
	otp        func() (string, error)
	bcryptCost int
}

func NewHandlerSet(cfg *config.Config, log logging.Logger, st *store.Store) *HandlerSet {
	if log == nil {
		log = logging.Nop()
	}
	return &HandlerSet{
		cfg:        cfg,
		log:        log,
		store:      st,
		secret:     []byte(cfg.SecretKey),
		otp:        randomOTP,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (h *HandlerSet) Register(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.GET("/files/:id", h.ServeFile)
	router.HEAD("/files/:id", h.ServeFile)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/verify", h.Verify)
		auth.POST("/resend-otp", h.ResendOTP)
		auth.POST("/forgot", h.Forgot)
		auth.POST("/forgot/reset-password", h.ResetPassword)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		v1.GET("/users/me", h.RequireUser(), h.Me)

		tools := v1.Group("/tools/pdf", h.OptionalUser())
		tools.POST("/merge", h.Merge)
		tools.POST("/compress", h.Compress)
		tools.POST("/protect", h.Protect)

		lib := v1.Group("", h.RequireUser())
		lib.GET("/documents/list-user-files", h.ListUserFiles)
		lib.GET("/documents", h.Documents)
		lib.POST("/documents/upload", h.UploadDocument)
		lib.GET("/conversations", h.Conversations)
		lib.POST("/conversations/", h.CreateConversation)
		lib.GET("/messages", h.Messages)
		lib.POST("/chat", h.Chat)
	}
}

func (h *HandlerSet) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail answers with a FastAPI-style {"detail": "..."} body.
func fail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// missing answers 422 with a validation list, as FastAPI does for absent
// parameters.
func missing(c *gin.Context, loc, field string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{
		"loc":  []string{loc, field},
		"msg":  fmt.Sprintf("Field required: %s", field),
		"type": "missing",
	}}})
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

// AuthAPI covers account and token endpoints.
type AuthAPI interface {
	Me(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Signup(ctx context.Context, username, email, password string) (*Challenge, error)
	VerifyOTP(ctx context.Context, userID, otp string) (string, error)
	ResendOTP(ctx context.Context, userID, email string) (string, error)
	ForgotPassword(ctx context.Context, email string) (*Challenge, error)
	ResetPassword(ctx context.Context, userID, newPassword string) (string, error)
}

// ToolsAPI covers the quota-limited PDF tools.
type ToolsAPI interface {
	Merge(ctx context.Context, files []Upload) (*models.ToolResult, error)
	Compress(ctx context.Context, files []Upload, level models.CompressionLevel) (*models.ToolResult, error)
	Protect(ctx context.Context, files []Upload, password string, perms models.Permissions) (*models.ToolResult, error)
}

// LibraryAPI covers the dashboard file list and the chat-with-PDF endpoints.
type LibraryAPI interface {
	ListUserFiles(ctx context.Context) ([]models.UserFile, error)
	Conversations(ctx context.Context, collectionID string) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, collectionID, title string) (*models.Conversation, error)
	Documents(ctx context.Context, collectionID string) ([]models.DocumentItem, error)
	UploadDocument(ctx context.Context, collectionID string, file Upload) (map[string]any, error)
	Messages(ctx context.Context, conversationID string) ([]models.MessageItem, error)
	SendChat(ctx context.Context, payload models.ChatPayload) (models.ChatReply, error)
}

// DownloadAPI reads presigned result URLs.
type DownloadAPI interface {
	FileMetadata(ctx context.Context, rawURL string) (sizeKB int64, pages int, err error)
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Client is the full backend contract.
type Client interface {
	AuthAPI
	ToolsAPI
	LibraryAPI
	DownloadAPI
}

// Upload is one file of a multipart request.
type Upload struct {
	Name string
	Data []byte
}

// LoginResponse is the body of a successful login. User is set only by
// backends that embed it.
type LoginResponse struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         *models.User `json:"user,omitempty"`
}

// Challenge is returned by flows that continue with an OTP step.
type Challenge struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

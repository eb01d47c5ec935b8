package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/files"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

// ChatService covers the logged-in area: the dashboard's recent files and
// chat with indexed PDFs. Every call requires a logged-in session and fails
// with common.ErrLoginRequired otherwise.
type ChatService interface {
	RecentFiles(ctx context.Context, limit int) ([]models.UserFile, error)
	Conversations(ctx context.Context, collectionID string) ([]models.Conversation, error)
	NewConversation(ctx context.Context, collectionID, title string) (*models.Conversation, error)
	Documents(ctx context.Context, collectionID string) ([]models.DocumentItem, error)
	Upload(ctx context.Context, collectionID, path string) (map[string]any, error)
	Messages(ctx context.Context, conversationID string) ([]models.MessageItem, error)
	Ask(ctx context.Context, collectionID, conversationID, query string) (string, error)
}

// StateReader exposes the current session state.
type StateReader interface {
	State() models.State
}

type chatService struct {
	api     client.LibraryAPI
	session StateReader
}

func NewChatService(api client.LibraryAPI, s StateReader) ChatService {
	return &chatService{api: api, session: s}
}

func (c *chatService) requireLogin() error {
	if !c.session.State().IsLoggedIn {
		return common.ErrLoginRequired
	}
	return nil
}

// RecentFiles returns the newest limit files. Names keep their raw form;
// callers show DisplayName.
func (c *chatService) RecentFiles(ctx context.Context, limit int) ([]models.UserFile, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	list, err := c.api.ListUserFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent documents: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Created().After(list[j].Created())
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (c *chatService) Conversations(ctx context.Context, collectionID string) ([]models.Conversation, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is required", common.ErrValidation)
	}
	return c.api.Conversations(ctx, collectionID)
}

func (c *chatService) NewConversation(ctx context.Context, collectionID, title string) (*models.Conversation, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is required", common.ErrValidation)
	}
	if strings.TrimSpace(title) == "" {
		title = "New chat"
	}
	return c.api.CreateConversation(ctx, collectionID, title)
}

func (c *chatService) Documents(ctx context.Context, collectionID string) ([]models.DocumentItem, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	return c.api.Documents(ctx, collectionID)
}

// Upload sends a local PDF to the collection for indexing.
func (c *chatService) Upload(ctx context.Context, collectionID, path string) (map[string]any, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	ok, err := files.IsPDF(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a PDF file", common.ErrValidation, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.api.UploadDocument(ctx, collectionID, client.Upload{Name: filepath.Base(path), Data: data})
}

func (c *chatService) Messages(ctx context.Context, conversationID string) ([]models.MessageItem, error) {
	if err := c.requireLogin(); err != nil {
		return nil, err
	}
	return c.api.Messages(ctx, conversationID)
}

// Ask sends query to the collection. An empty conversationID starts a new
// conversation on the backend side.
func (c *chatService) Ask(ctx context.Context, collectionID, conversationID, query string) (string, error) {
	if err := c.requireLogin(); err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" || collectionID == "" {
		return "", fmt.Errorf("%w: missing query or collection id", common.ErrValidation)
	}
	payload := models.ChatPayload{Query: query, CollectionID: collectionID}
	if conversationID != "" {
		payload.ConversationID = &conversationID
	}
	reply, err := c.api.SendChat(ctx, payload)
	if err != nil {
		return "", err
	}
	return reply.Answer(), nil
}

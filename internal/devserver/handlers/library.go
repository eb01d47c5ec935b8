package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/devserver/store"
)

const titleLength = 40

func (h *HandlerSet) ListUserFiles(c *gin.Context) {
	c.JSON(http.StatusOK, models.UserFiles{Files: h.store.UserFiles(currentUserID(c))})
}

func (h *HandlerSet) Documents(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		missing(c, "query", "collection_id")
		return
	}
	c.JSON(http.StatusOK, h.store.Documents(currentUserID(c), collectionID))
}

// UploadDocument indexes one PDF into a collection, counted against the
// user's indexed documents limit.
func (h *HandlerSet) UploadDocument(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		missing(c, "query", "collection_id")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		missing(c, "body", "file")
		return
	}
	data, err := readPart(fh)
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Could not read %s", fh.Filename))
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("%s is not a PDF file", fh.Filename))
		return
	}

	userID := currentUserID(c)
	_, err = h.store.UpdateUser(userID, func(u *store.User) error {
		if u.Usage.RAGIndexedDocumentsCount >= u.Usage.RAGIndexedDocumentsLimit {
			return store.ErrLimitReached
		}
		u.Usage.RAGIndexedDocumentsCount++
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrLimitReached) {
			fail(c, http.StatusTooManyRequests, "Indexed documents limit reached")
			return
		}
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	doc := h.store.AddDocument(userID, collectionID, fh.Filename, h.cfg.PublicURL, data)
	c.JSON(http.StatusOK, gin.H{"message": "Document uploaded and indexed", "document_id": doc.ID})
}

func (h *HandlerSet) Conversations(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		missing(c, "query", "collection_id")
		return
	}
	c.JSON(http.StatusOK, h.store.Conversations(currentUserID(c), collectionID))
}

func (h *HandlerSet) CreateConversation(c *gin.Context) {
	collectionID := c.Query("collection_id")
	if collectionID == "" {
		missing(c, "query", "collection_id")
		return
	}
	title := c.Query("title")
	if title == "" {
		title = "New conversation"
	}
	c.JSON(http.StatusOK, h.store.CreateConversation(currentUserID(c), collectionID, title))
}

func (h *HandlerSet) Messages(c *gin.Context) {
	conversationID := c.Query("conversation_id")
	if conversationID == "" {
		missing(c, "query", "conversation_id")
		return
	}
	if _, err := h.store.Conversation(currentUserID(c), conversationID); err != nil {
		fail(c, http.StatusNotFound, "Conversation not found")
		return
	}
	c.JSON(http.StatusOK, h.store.Messages(conversationID))
}

// Chat answers a query within a collection. Without a conversation id a new
// conversation is started and titled after the query.
func (h *HandlerSet) Chat(c *gin.Context) {
	var req models.ChatPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		missing(c, "body", "query")
		return
	}
	if req.CollectionID == "" {
		missing(c, "body", "collection_id")
		return
	}

	userID := currentUserID(c)
	var conv models.Conversation
	if req.ConversationID != nil && *req.ConversationID != "" {
		var err error
		if conv, err = h.store.Conversation(userID, *req.ConversationID); err != nil {
			fail(c, http.StatusNotFound, "Conversation not found")
			return
		}
	}

	usage, err := h.store.ConsumeQuery(userID)
	if err != nil {
		if errors.Is(err, store.ErrLimitReached) {
			fail(c, http.StatusTooManyRequests, fmt.Sprintf(
				"Monthly limit of %d queries reached", usage.RAGQueriesLimitMonthly))
			return
		}
		fail(c, http.StatusNotFound, "User not found")
		return
	}

	if conv.ID == "" {
		conv = h.store.CreateConversation(userID, req.CollectionID, titleFrom(req.Query))
	}
	h.store.AppendMessage(conv.ID, "user", req.Query)
	answer := answerFor(h.store.Documents(userID, req.CollectionID), req.Query)
	h.store.AppendMessage(conv.ID, "ai", answer)

	c.JSON(http.StatusOK, gin.H{
		"answer":          answer,
		"conversation_id": conv.ID,
		"user_usage":      usage,
	})
}

func titleFrom(query string) string {
	q := []rune(strings.TrimSpace(query))
	if len(q) <= titleLength {
		return string(q)
	}
	return string(q[:titleLength]) + "..."
}

// answerFor is a canned reply naming the indexed documents.
func answerFor(docs []models.DocumentItem, query string) string {
	if len(docs) == 0 {
		return "This collection has no documents yet. Upload a PDF and ask again."
	}
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.FileName)
	}
	return fmt.Sprintf("Searched %d document(s) (%s) for %q.", len(docs), strings.Join(names, ", "), query)
}

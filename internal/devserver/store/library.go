package store

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

func collectionKey(userID, collectionID string) string {
	return userID + "/" + collectionID
}

func (s *Store) CreateConversation(userID, collectionID, title string) models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.NewTimestamp(s.now())
	c := models.Conversation{
		ID:           uuid.NewString(),
		UserID:       userID,
		CollectionID: collectionID,
		Title:        title,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.conversations[c.ID] = c
	return c
}

// Conversation returns the conversation when userID owns it.
func (s *Store) Conversation(userID, id string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok || c.UserID != userID {
		return models.Conversation{}, common.ErrorNotFound
	}
	return c, nil
}

// Conversations lists the user's conversations of a collection, most
// recently active first.
func (s *Store) Conversations(userID, collectionID string) []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Conversation{}
	for _, c := range s.conversations {
		if c.UserID == userID && c.CollectionID == collectionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActiveAt.After(out[j].LastActiveAt.Time)
	})
	return out
}

// AddDocument indexes a file into a collection. The upload also shows up
// among the user's files under a chat_<millis>_ name.
func (s *Store) AddDocument(userID, collectionID, name, publicURL string, data []byte) models.DocumentItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := uuid.NewString()
	s.results[id] = Result{ID: id, Owner: userID, Name: name, Data: data}

	doc := models.DocumentItem{
		ID:         id,
		FileName:   name,
		UploadedAt: models.NewTimestamp(now),
		Status:     "indexed",
		URL:        publicURL + "/files/" + id,
	}
	k := collectionKey(userID, collectionID)
	s.documents[k] = append(s.documents[k], doc)

	s.userFiles[userID] = append(s.userFiles[userID], models.UserFile{
		ID:        id,
		Name:      "chat_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + name,
		URL:       doc.URL,
		CreatedAt: now.UTC().Format(time.RFC3339),
	})
	return doc
}

func (s *Store) Documents(userID, collectionID string) []models.DocumentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DocumentItem{}, s.documents[collectionKey(userID, collectionID)]...)
}

// AppendMessage adds a message and bumps the conversation's activity time.
func (s *Store) AppendMessage(conversationID, role, text string) models.MessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.NewTimestamp(s.now())
	m := models.MessageItem{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Timestamp:      now,
		Role:           role,
		ContentText:    text,
	}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	if c, ok := s.conversations[conversationID]; ok {
		c.LastActiveAt = now
		s.conversations[conversationID] = c
	}
	return m
}

func (s *Store) Messages(conversationID string) []models.MessageItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MessageItem{}, s.messages[conversationID]...)
}

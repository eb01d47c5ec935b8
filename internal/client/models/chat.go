package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Conversation struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CollectionID string    `json:"collection_id"`
	Title        string    `json:"title"`
	CreatedAt    Timestamp `json:"created_at"`
	LastActiveAt Timestamp `json:"last_active_at"`
}

type DocumentItem struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	UploadedAt  Timestamp `json:"uploaded_at"`
	Status      string    `json:"status"`
	StoragePath string    `json:"storage_path,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// MessageItem is a chat message. Backends disagree on the names of the text
// and author fields, so all variants are kept.
type MessageItem struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      Timestamp `json:"timestamp"`
	Role           string    `json:"role,omitempty"`
	Sender         string    `json:"sender,omitempty"`
	ContentText    string    `json:"content,omitempty"`
	Text           string    `json:"text,omitempty"`
	Message        string    `json:"message,omitempty"`
	Body           string    `json:"body,omitempty"`
}

// Content returns the first non-empty of content, text, message and body.
func (m MessageItem) Content() string {
	for _, s := range []string{m.ContentText, m.Text, m.Message, m.Body} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Author returns sender, then role, lower-cased. Defaults to "ai".
func (m MessageItem) Author() string {
	switch {
	case m.Sender != "":
		return strings.ToLower(m.Sender)
	case m.Role != "":
		return strings.ToLower(m.Role)
	default:
		return "ai"
	}
}

// ChatPayload is the body of a chat query.
type ChatPayload struct {
	Query          string  `json:"query"`
	CollectionID   string  `json:"collection_id"`
	ConversationID *string `json:"conversation_id"`
}

// ChatReply is whatever the chat endpoint answered. Answer picks the text.
type ChatReply map[string]any

func (r ChatReply) Answer() string {
	for _, key := range []string{"answer", "response", "content", "text", "message"} {
		if s, ok := r[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// UserFile is an entry of the dashboard's recent files list. CreatedAt is
// kept raw because some backends put garbage there.
type UserFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
}

var chatPrefix = regexp.MustCompile(`^chat_(\d+)_`)

// DisplayName strips the chat_<millis>_ upload prefix.
func (f UserFile) DisplayName() string {
	return chatPrefix.ReplaceAllString(f.Name, "")
}

// Created parses CreatedAt and falls back to the millisecond stamp embedded
// in a chat_<millis>_ name. The zero time means unknown.
func (f UserFile) Created() time.Time {
	if ts, err := ParseTimestamp(f.CreatedAt); err == nil {
		return ts.Time
	}
	if m := chatPrefix.FindStringSubmatch(f.Name); m != nil {
		if ms, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
	}
	return time.Time{}
}

// UserFiles is the list-user-files response.
type UserFiles struct {
	Files []UserFile `json:"files"`
}

// ListOf decodes either a bare JSON array or an object with a data array.
// ok is false when neither shape matches.
func ListOf[T any](b []byte) (items []T, ok bool) {
	if err := json.Unmarshal(b, &items); err == nil {
		if items == nil {
			items = []T{}
		}
		return items, true
	}
	var wrapped struct {
		Data *[]T `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil || wrapped.Data == nil {
		return nil, false
	}
	return *wrapped.Data, true
}

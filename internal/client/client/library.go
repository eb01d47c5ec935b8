package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

func (c *HTTPClient) ListUserFiles(ctx context.Context) ([]models.UserFile, error) {
	var out models.UserFiles
	err := c.call(ctx, request{method: http.MethodGet, path: "/api/v1/documents/list-user-files", auth: true}, &out)
	if err != nil {
		return nil, err
	}
	return out.Files, nil
}

func (c *HTTPClient) Conversations(ctx context.Context, collectionID string) ([]models.Conversation, error) {
	_, data, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/conversations",
		query:  url.Values{"collection_id": {collectionID}},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	items, ok := models.ListOf[models.Conversation](data)
	if !ok {
		return []models.Conversation{}, nil
	}
	return items, nil
}

func (c *HTTPClient) CreateConversation(ctx context.Context, collectionID, title string) (*models.Conversation, error) {
	var out models.Conversation
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/conversations/",
		query:  url.Values{"collection_id": {collectionID}, "title": {title}},
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// firstOf tries each request in order and returns the first 2xx body that
// accept takes. The last failure is returned when none succeeds.
func (c *HTTPClient) firstOf(ctx context.Context, reqs []request, accept func([]byte) bool) error {
	var lastErr error
	for _, r := range reqs {
		_, data, err := c.send(ctx, r)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}
		if accept(data) {
			return nil
		}
		lastErr = fmt.Errorf("%w from %s", ErrBadResponse, r.path)
	}
	if lastErr == nil {
		lastErr = errors.New("no endpoint candidates")
	}
	return lastErr
}

func (c *HTTPClient) Documents(ctx context.Context, collectionID string) ([]models.DocumentItem, error) {
	q := url.Values{"collection_id": {collectionID}}
	var items []models.DocumentItem
	err := c.firstOf(ctx, []request{
		{method: http.MethodGet, path: "/api/v1/documents", query: q, auth: true},
		{method: http.MethodGet, path: "/documents", query: q, auth: true},
	}, func(b []byte) bool {
		var ok bool
		items, ok = models.ListOf[models.DocumentItem](b)
		return ok
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) UploadDocument(ctx context.Context, collectionID string, file Upload) (map[string]any, error) {
	body, contentType, err := multipartBody("file", []Upload{file}, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	err = c.firstOf(ctx, []request{{
		method:      http.MethodPost,
		path:        "/api/v1/documents/upload",
		query:       url.Values{"collection_id": {collectionID}},
		body:        body,
		contentType: contentType,
		auth:        true,
	}}, func(b []byte) bool {
		_ = json.Unmarshal(b, &out)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Messages(ctx context.Context, conversationID string) ([]models.MessageItem, error) {
	q := url.Values{"conversation_id": {conversationID}}
	var items []models.MessageItem
	err := c.firstOf(ctx, []request{
		{method: http.MethodGet, path: "/api/v1/messages", query: q, auth: true},
		{method: http.MethodGet, path: "/messages", query: q, auth: true},
		{method: http.MethodGet, path: "/", query: q, auth: true},
	}, func(b []byte) bool {
		var ok bool
		items, ok = models.ListOf[models.MessageItem](b)
		return ok
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) SendChat(ctx context.Context, payload models.ChatPayload) (models.ChatReply, error) {
	if payload.Query == "" || payload.CollectionID == "" {
		return nil, errors.New("missing query or collection_id")
	}
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	reply := models.ChatReply{}
	err = c.firstOf(ctx, []request{
		{method: http.MethodPost, path: "/api/v1/chat", body: body, contentType: "application/json", auth: true},
		{method: http.MethodPost, path: "/chat", body: body, contentType: "application/json", auth: true},
	}, func(b []byte) bool {
		_ = json.Unmarshal(b, &reply)
		return true
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

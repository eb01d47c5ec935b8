package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

type stubTokens struct {
	token string
	calls atomic.Int32
	err   error
}

func (s *stubTokens) Access(context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*HTTPClient, *stubTokens) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	tokens := &stubTokens{token: "acc"}
	return NewHTTPClient(ts.URL+"/", tokens, WithHTTPClient(ts.Client())), tokens
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestMe_SendsBearerEvenWhenEmpty(t *testing.T) {
	var gotAuth []string
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/me", r.URL.Path)
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		if strings.TrimSpace(r.Header.Get("Authorization")) == "Bearer" {
			writeJSON(w, 401, map[string]string{"detail": "Not authenticated"})
			return
		}
		writeJSON(w, 200, map[string]any{"name": "alice", "plan_type": "basic", "verified": true})
	})

	_, err := c.Me(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthorized)

	u, err := c.Me(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Name)
	require.Equal(t, models.PlanBasic, u.PlanType)

	require.Equal(t, []string{"Bearer", "Bearer tok"}, gotAuth)
	require.Zero(t, tokens.calls.Load(), "Me uses the explicit token only")
}

func TestMe_RejectsReplyWithoutPlan(t *testing.T) {
	for name, body := range map[string]string{"empty body": "", "no plan type": `{"name":"alice"}`} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(body))
			})

			u, err := c.Me(context.Background(), "tok")
			require.Nil(t, u)
			require.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestRefresh(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["refresh_token"] != "good" {
			writeJSON(w, 401, map[string]string{"detail": "Invalid refresh token"})
			return
		}
		writeJSON(w, 200, map[string]string{"access_token": "new-access"})
	})

	tok, err := c.Refresh(context.Background(), "good")
	require.NoError(t, err)
	require.Equal(t, "new-access", tok)

	_, err = c.Refresh(context.Background(), "bad")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, "Invalid refresh token", Message(err))
}

func TestLogin_FormEncoded(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "pw" {
			writeJSON(w, 401, map[string]any{"detail": map[string]string{"message": "Invalid credentials"}})
			return
		}
		writeJSON(w, 200, map[string]string{"message": "ok", "access_token": "a", "refresh_token": "r", "token_type": "bearer"})
	})

	resp, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "a", resp.AccessToken)
	require.Equal(t, "r", resp.RefreshToken)
	require.Nil(t, resp.User)

	_, err = c.Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", Message(err))
}

func TestLogin_MissingTokensIsBadResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, map[string]string{"message": "ok"})
	})
	_, err := c.Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestOTPFlows(t *testing.T) {
	seen := map[string]map[string]string{}
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		seen[r.URL.Path] = in
		writeJSON(w, 200, map[string]string{"message": "done", "user_id": "u-1"})
	})
	ctx := context.Background()

	ch, err := c.Signup(ctx, "bob", "bob@x.io", "pw")
	require.NoError(t, err)
	require.Equal(t, "u-1", ch.UserID)

	_, err = c.VerifyOTP(ctx, "u-1", "123456")
	require.NoError(t, err)
	_, err = c.ResendOTP(ctx, "u-1", "bob@x.io")
	require.NoError(t, err)
	ch, err = c.ForgotPassword(ctx, "bob@x.io")
	require.NoError(t, err)
	require.Equal(t, "u-1", ch.UserID)
	msg, err := c.ResetPassword(ctx, "u-1", "new")
	require.NoError(t, err)
	require.Equal(t, "done", msg)

	assert.Equal(t, map[string]string{"username": "bob", "email": "bob@x.io", "password": "pw"}, seen["/api/v1/auth/signup"])
	assert.Equal(t, map[string]string{"user_id": "u-1", "otp": "123456"}, seen["/api/v1/auth/verify"])
	assert.Equal(t, map[string]string{"user_id": "u-1", "email": "bob@x.io"}, seen["/api/v1/auth/resend-otp"])
	assert.Equal(t, map[string]string{"email": "bob@x.io"}, seen["/api/v1/auth/forgot"])
	assert.Equal(t, map[string]string{"user_id": "u-1", "new_password": "new"}, seen["/api/v1/auth/forgot/reset-password"])
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	c := NewHTTPClient(ts.URL, &stubTokens{})

	_, err := c.Me(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, IsRejection(err))
}

func TestCompress_MultipartAndFreshToken(t *testing.T) {
	var gotAuth []string
	c, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tools/pdf/compress", r.URL.Path)
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "high", r.FormValue("compression_level"))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 1)
		require.Equal(t, "a.pdf", files[0].Filename)
		writeJSON(w, 200, map[string]any{
			"download_urls": []string{"s3.example/out.pdf"},
			"user_usage":    map[string]any{"pdf_processed_today": 2, "pdf_processed_limit_daily": 20},
		})
	})
	ctx := context.Background()
	up := []Upload{{Name: "a.pdf", Data: []byte("%PDF-1.4")}}

	res, err := c.Compress(ctx, up, models.CompressionHigh)
	require.NoError(t, err)
	require.Equal(t, []string{"s3.example/out.pdf"}, res.DownloadURLs)
	require.Equal(t, 2, res.UserUsage.PDFProcessedToday)

	tokens.token = "rotated"
	_, err = c.Compress(ctx, up, models.CompressionHigh)
	require.NoError(t, err)

	require.Equal(t, []string{"Bearer acc", "Bearer rotated"}, gotAuth)
	require.EqualValues(t, 2, tokens.calls.Load())
}

func TestProtect_SendsPasswordAndPermissions(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tools/pdf/protect", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "s3cret", r.FormValue("password"))
		require.JSONEq(t, `{"printing":"low","modifying":true,"copying":false,"formFilling":false}`, r.FormValue("permissions"))
		writeJSON(w, 200, map[string]any{"download_url": []string{"https://x/p.pdf"}})
	})

	perms := models.Permissions{Printing: models.PrintingLow, Modifying: true}
	res, err := c.Protect(context.Background(), []Upload{{Name: "a.pdf", Data: []byte("%PDF")}}, "s3cret", perms)
	require.NoError(t, err)
	require.Equal(t, []string{"https://x/p.pdf"}, res.DownloadURLs)
}

func TestMerge_InlinePDFAndQuotaRejection(t *testing.T) {
	var reject atomic.Bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tools/pdf/merge", r.URL.Path)
		if reject.Load() {
			writeJSON(w, 429, map[string]string{"detail": "Daily PDF limit reached"})
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="merged.pdf"`)
		_, _ = w.Write([]byte("%PDF-merged"))
	})
	files := []Upload{{Name: "a.pdf", Data: []byte("%PDF")}, {Name: "b.pdf", Data: []byte("%PDF")}}

	res, err := c.Merge(context.Background(), files)
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-merged"), res.Inline)
	require.Equal(t, "merged.pdf", res.InlineName)

	reject.Store(true)
	_, err = c.Merge(context.Background(), files)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.True(t, IsRejection(err))
	require.Equal(t, "Daily PDF limit reached", Message(err))
}

func TestListUserFiles(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/documents/list-user-files", r.URL.Path)
		require.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]any{"files": []map[string]string{
			{"id": "1", "name": "chat_1_a.pdf", "url": "u", "createdAt": "2025-01-01T00:00:00Z"},
		}})
	})
	files, err := c.ListUserFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.pdf", files[0].DisplayName())
}

func TestConversations_BothShapes(t *testing.T) {
	var wrapped atomic.Bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "col-1", r.URL.Query().Get("collection_id"))
			items := []map[string]string{{"id": "c1", "collection_id": "col-1", "title": "T"}}
			if wrapped.Load() {
				writeJSON(w, 200, map[string]any{"data": items})
				return
			}
			writeJSON(w, 200, items)
		case http.MethodPost:
			require.Equal(t, "/api/v1/conversations/", r.URL.Path)
			require.Equal(t, "New chat", r.URL.Query().Get("title"))
			writeJSON(w, 200, map[string]string{"id": "c2", "collection_id": "col-1", "title": "New chat"})
		}
	})
	ctx := context.Background()

	convs, err := c.Conversations(ctx, "col-1")
	require.NoError(t, err)
	require.Equal(t, "c1", convs[0].ID)

	wrapped.Store(true)
	convs, err = c.Conversations(ctx, "col-1")
	require.NoError(t, err)
	require.Len(t, convs, 1)

	conv, err := c.CreateConversation(ctx, "col-1", "New chat")
	require.NoError(t, err)
	require.Equal(t, "c2", conv.ID)
}

func TestDocuments_FallsBackToSecondCandidate(t *testing.T) {
	var tried []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		tried = append(tried, r.URL.Path)
		if r.URL.Path == "/api/v1/documents" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, 200, map[string]any{"data": []map[string]string{{"id": "d1", "file_name": "x.pdf", "status": "indexed"}}})
	})

	docs, err := c.Documents(context.Background(), "col")
	require.NoError(t, err)
	require.Equal(t, "x.pdf", docs[0].FileName)
	require.Equal(t, []string{"/api/v1/documents", "/documents"}, tried)
}

func TestMessages_AllCandidatesFail(t *testing.T) {
	var tried []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		tried = append(tried, r.URL.Path)
		if r.URL.Path == "/" {
			writeJSON(w, 200, map[string]string{"unexpected": "shape"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Messages(context.Background(), "conv")
	require.ErrorIs(t, err, ErrBadResponse)
	require.Equal(t, []string{"/api/v1/messages", "/messages", "/"}, tried)
}

func TestSendChat(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/chat", r.URL.Path)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "what?", in["query"])
		require.Nil(t, in["conversation_id"])
		writeJSON(w, 200, map[string]string{"answer": "this"})
	})

	reply, err := c.SendChat(context.Background(), models.ChatPayload{Query: "what?", CollectionID: "col"})
	require.NoError(t, err)
	require.Equal(t, "this", reply.Answer())

	_, err = c.SendChat(context.Background(), models.ChatPayload{Query: "what?"})
	require.Error(t, err)
}

func TestUploadDocument(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/documents/upload", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		require.Equal(t, "doc.pdf", hdr.Filename)
		require.True(t, bytes.HasPrefix(b, []byte("%PDF")))
		writeJSON(w, 200, map[string]string{"id": "d9"})
	})
	out, err := c.UploadDocument(context.Background(), "col", Upload{Name: "doc.pdf", Data: []byte("%PDF-1")})
	require.NoError(t, err)
	require.Equal(t, "d9", out["id"])
}

func TestFileMetadataAndDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 120*1024+1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	})
	ctx := context.Background()

	kb, pages, err := c.FileMetadata(ctx, c.baseURL+"/out.pdf")
	require.NoError(t, err)
	require.EqualValues(t, 121, kb)
	require.Equal(t, 3, pages)

	var buf bytes.Buffer
	n, err := c.Download(ctx, c.baseURL+"/out.pdf", &buf)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), n)
}

func TestFileMetadata_FailureDefaults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	kb, pages, err := c.FileMetadata(context.Background(), c.baseURL+"/gone.pdf")
	require.Error(t, err)
	require.Zero(t, kb)
	require.Equal(t, 1, pages)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	c := NewHTTPClient("http://h:8000///", nil)
	require.True(t, strings.HasSuffix(c.url("/api/v1/users/me", nil), ":8000/api/v1/users/me"))
}

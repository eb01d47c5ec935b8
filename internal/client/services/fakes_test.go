package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/files"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
)

// ---- fake session ----

type fakeSession struct {
	mu    sync.Mutex
	state models.State

	loginErr error
	logins   int
	logouts  int
	refresh  string
	access   string
}

func guest(used, limit int) *fakeSession {
	g := models.NewGuestUser(limit, time.Now())
	g.UsageMetrics.PDFProcessedToday = used
	return &fakeSession{state: models.State{User: models.GuestSession(*g)}}
}

func loggedIn() *fakeSession {
	u := models.User{Name: "alice", PlanType: models.PlanBasic}
	return &fakeSession{state: models.State{IsLoggedIn: true, User: models.MemberSession(u)}}
}

func (f *fakeSession) InitializeAuth(context.Context) models.State { return f.State() }

func (f *fakeSession) Login(_ context.Context, u models.User, refresh, access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.refresh, f.access = refresh, access
	f.state = models.State{IsLoggedIn: true, User: models.MemberSession(u)}
	return nil
}

func (f *fakeSession) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.state.IsLoggedIn = false
}

func (f *fakeSession) UpdateUserUsage(_ context.Context, m models.UsageMetrics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.User.IsMember() {
		f.state.User.Member.UsageMetrics = m
	}
}

func (f *fakeSession) UpdateGuestUsage(_ context.Context, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.User.IsGuest() {
		f.state.User.Guest.UsageMetrics.PDFProcessedToday = n
	}
}

func (f *fakeSession) ResetGuestUsage(context.Context, time.Time) {}

func (f *fakeSession) State() models.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

func (f *fakeSession) guestUsed() int {
	return f.State().User.Guest.UsageMetrics.PDFProcessedToday
}

// ---- fake backend ----

type fakeAPI struct {
	mu sync.Mutex

	loginResp *client.LoginResponse
	loginErr  error
	meUser    *models.User
	meErr     error
	meTokens  []string

	signupCalls int
	resetCalls  int

	toolResult *models.ToolResult
	toolErr    error
	toolCalls  []string
	lastFiles  []client.Upload
	lastLevel  models.CompressionLevel
	lastPerms  models.Permissions

	files     []models.UserFile
	chatReply models.ChatReply
	lastChat  models.ChatPayload
	uploaded  []client.Upload

	metaKB    int64
	metaPages int
	metaErr   error
	payload   []byte
	dlErr     error
}

func (f *fakeAPI) Me(_ context.Context, token string) (*models.User, error) {
	f.meTokens = append(f.meTokens, token)
	return f.meUser, f.meErr
}

func (f *fakeAPI) Refresh(context.Context, string) (string, error) { return "", nil }

func (f *fakeAPI) Login(context.Context, string, string) (*client.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAPI) Signup(context.Context, string, string, string) (*client.Challenge, error) {
	f.signupCalls++
	return &client.Challenge{UserID: "u-1"}, nil
}

func (f *fakeAPI) VerifyOTP(context.Context, string, string) (string, error) { return "verified", nil }

func (f *fakeAPI) ResendOTP(context.Context, string, string) (string, error) { return "sent", nil }

func (f *fakeAPI) ForgotPassword(context.Context, string) (*client.Challenge, error) {
	return &client.Challenge{UserID: "u-1"}, nil
}

func (f *fakeAPI) ResetPassword(context.Context, string, string) (string, error) {
	f.resetCalls++
	return "reset", nil
}

func (f *fakeAPI) tool(name string, ups []client.Upload) (*models.ToolResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toolCalls = append(f.toolCalls, name)
	f.lastFiles = ups
	if f.toolErr != nil {
		return nil, f.toolErr
	}
	return f.toolResult, nil
}

func (f *fakeAPI) Merge(_ context.Context, ups []client.Upload) (*models.ToolResult, error) {
	return f.tool("merge", ups)
}

func (f *fakeAPI) Compress(_ context.Context, ups []client.Upload, lvl models.CompressionLevel) (*models.ToolResult, error) {
	f.lastLevel = lvl
	return f.tool("compress", ups)
}

func (f *fakeAPI) Protect(_ context.Context, ups []client.Upload, _ string, perms models.Permissions) (*models.ToolResult, error) {
	f.lastPerms = perms
	return f.tool("protect", ups)
}

func (f *fakeAPI) ListUserFiles(context.Context) ([]models.UserFile, error) { return f.files, nil }

func (f *fakeAPI) Conversations(context.Context, string) ([]models.Conversation, error) {
	return []models.Conversation{{ID: "c1"}}, nil
}

func (f *fakeAPI) CreateConversation(_ context.Context, col, title string) (*models.Conversation, error) {
	return &models.Conversation{ID: "c2", CollectionID: col, Title: title}, nil
}

func (f *fakeAPI) Documents(context.Context, string) ([]models.DocumentItem, error) {
	return []models.DocumentItem{{ID: "d1"}}, nil
}

func (f *fakeAPI) UploadDocument(_ context.Context, _ string, up client.Upload) (map[string]any, error) {
	f.uploaded = append(f.uploaded, up)
	return map[string]any{"ok": true}, nil
}

func (f *fakeAPI) Messages(context.Context, string) ([]models.MessageItem, error) {
	return []models.MessageItem{{ID: "m1", Text: "hi"}}, nil
}

func (f *fakeAPI) SendChat(_ context.Context, p models.ChatPayload) (models.ChatReply, error) {
	f.lastChat = p
	return f.chatReply, nil
}

func (f *fakeAPI) FileMetadata(context.Context, string) (int64, int, error) {
	return f.metaKB, f.metaPages, f.metaErr
}

func (f *fakeAPI) Download(_ context.Context, _ string, w io.Writer) (int64, error) {
	if f.dlErr != nil {
		_, _ = w.Write([]byte("partial"))
		return 0, f.dlErr
	}
	n, err := w.Write(f.payload)
	return int64(n), err
}

var _ client.Client = (*fakeAPI)(nil)

// ---- helpers ----

func selectPDFs(t *testing.T, names ...string) *files.Selection {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4 "+n), 0o600))
		paths = append(paths, p)
	}
	sel := files.NewSelection()
	_, rejected := sel.Add(paths...)
	require.Empty(t, rejected)
	return sel
}

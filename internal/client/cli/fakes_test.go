package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
	"github.com/dmitrijs2005/pdfier/internal/client/files"
	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/services"
)

// ------------ input stubs ------------

// stubInputs feeds getSimpleText and getPassword from the given queues.
// Running out of input fails the test.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, prompt string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			t.Fatalf("unexpected password prompt %q", prompt)
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = toString(v)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ------------ session ------------

type fakeSession struct {
	state     models.State
	initCalls int
}

func (f *fakeSession) InitializeAuth(context.Context) models.State {
	f.initCalls++
	return f.state
}
func (f *fakeSession) State() models.State { return f.state }

func guestState(used, limit int) models.State {
	g := models.NewGuestUser(limit, time.Date(2025, 5, 3, 10, 0, 0, 0, time.UTC))
	g.UsageMetrics.PDFProcessedToday = used
	return models.State{User: models.GuestSession(*g)}
}

func memberState(name string) models.State {
	return models.State{
		IsLoggedIn: true,
		User: models.MemberSession(models.User{
			Name:     name,
			PlanType: models.PlanBasic,
			Verified: true,
			UsageMetrics: models.UsageMetrics{
				PDFProcessedToday:      2,
				PDFProcessedLimitDaily: 50,
				RAGQueriesLimitMonthly: 100,
			},
		}),
	}
}

// ------------ auth ------------

type fakeAuth struct {
	loginUser, loginPass string
	loginOut             *models.User
	loginErr             error

	logoutCalled bool

	signupArgs []string
	challenge  *client.Challenge
	signupErr  error

	verified    []string
	verifyErr   error
	resendCalls int

	forgotEmail string

	resetArgs []string
	resetErr  error
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (*models.User, error) {
	f.loginUser, f.loginPass = username, password
	return f.loginOut, f.loginErr
}
func (f *fakeAuth) Logout(context.Context) { f.logoutCalled = true }
func (f *fakeAuth) Signup(_ context.Context, username, email, password string) (*client.Challenge, error) {
	f.signupArgs = []string{username, email, password}
	return f.challenge, f.signupErr
}
func (f *fakeAuth) VerifyOTP(_ context.Context, userID, otp string) (string, error) {
	f.verified = append(f.verified, userID+":"+otp)
	return "verified", f.verifyErr
}
func (f *fakeAuth) ResendOTP(context.Context, string, string) (string, error) {
	f.resendCalls++
	return "code sent", nil
}
func (f *fakeAuth) ForgotPassword(_ context.Context, email string) (*client.Challenge, error) {
	f.forgotEmail = email
	return f.challenge, nil
}
func (f *fakeAuth) ResetPassword(_ context.Context, userID, password, confirm string) (string, error) {
	f.resetArgs = []string{userID, password, confirm}
	return "", f.resetErr
}

// ------------ tools ------------

type fakeTools struct {
	calls    []string
	level    string
	password string
	perms    models.Permissions
	outcome  *services.ToolOutcome
	err      error

	downloaded []models.DownloadItem
	dir        string
}

func (f *fakeTools) Merge(context.Context) (*services.ToolOutcome, error) {
	f.calls = append(f.calls, "merge")
	return f.outcome, f.err
}
func (f *fakeTools) Compress(_ context.Context, level string) (*services.ToolOutcome, error) {
	f.calls = append(f.calls, "compress")
	f.level = level
	return f.outcome, f.err
}
func (f *fakeTools) Protect(_ context.Context, password, confirm string, perms models.Permissions) (*services.ToolOutcome, error) {
	f.calls = append(f.calls, "protect")
	f.password, f.perms = password, perms
	return f.outcome, f.err
}
func (f *fakeTools) Download(_ context.Context, item models.DownloadItem) (string, error) {
	f.downloaded = append(f.downloaded, item)
	return filepath.Join(f.dir, item.FileName), nil
}

// ------------ chat ------------

type fakeChat struct {
	files    []models.UserFile
	convs    []models.Conversation
	docs     []models.DocumentItem
	messages []models.MessageItem
	answer   string
	err      error

	newConvArgs []string
	uploadArgs  []string
	askArgs     []string
}

func (f *fakeChat) RecentFiles(context.Context, int) ([]models.UserFile, error) {
	return f.files, f.err
}
func (f *fakeChat) Conversations(context.Context, string) ([]models.Conversation, error) {
	return f.convs, f.err
}
func (f *fakeChat) NewConversation(_ context.Context, collectionID, title string) (*models.Conversation, error) {
	f.newConvArgs = []string{collectionID, title}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Conversation{ID: "c-new", CollectionID: collectionID, Title: title}, nil
}
func (f *fakeChat) Documents(context.Context, string) ([]models.DocumentItem, error) {
	return f.docs, f.err
}
func (f *fakeChat) Upload(_ context.Context, collectionID, path string) (map[string]any, error) {
	f.uploadArgs = []string{collectionID, path}
	return map[string]any{}, f.err
}
func (f *fakeChat) Messages(context.Context, string) ([]models.MessageItem, error) {
	return f.messages, f.err
}
func (f *fakeChat) Ask(_ context.Context, collectionID, conversationID, query string) (string, error) {
	f.askArgs = []string{collectionID, conversationID, query}
	return f.answer, f.err
}

// ------------ app ------------

type testApp struct {
	*App
	out     *bytes.Buffer
	session *fakeSession
	auth    *fakeAuth
	tools   *fakeTools
	chat    *fakeChat
}

func newTestApp(t *testing.T, st models.State) *testApp {
	t.Helper()
	out := &bytes.Buffer{}
	ta := &testApp{
		out:     out,
		session: &fakeSession{state: st},
		auth:    &fakeAuth{},
		tools:   &fakeTools{dir: t.TempDir()},
		chat:    &fakeChat{},
	}
	ta.App = &App{
		session:     ta.session,
		authService: ta.auth,
		toolService: ta.tools,
		chatService: ta.chat,
		selection:   files.NewSelection(),
		reader:      bufio.NewReader(strings.NewReader("")),
		out:         out,
	}
	return ta
}

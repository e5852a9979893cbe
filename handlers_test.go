package blogspace

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/sayaksen/blogspace/analytics"
)

const (
	testAdminEmail    = "owner@example.com"
	testAdminPassword = "correct-horse"
	testPublishToken  = "publish-secret"
)

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// stubViews renders marker strings so tests can assert which page was
// served without parsing HTML.
func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func() templ.Component { return textComponent("home") },
		PostList: func(space string, posts []PostEntry, activeTags []string) templ.Component {
			return textComponent("list " + space)
		},
		Post: func(entry PostEntry, body PostBody, shareURL string) templ.Component {
			return textComponent("post " + entry.ID)
		},
		PublishForm: func(draft PublishDraft, csrfToken string) templ.Component {
			return textComponent("publish form title=" + draft.Title + " body=" + draft.Body)
		},
		AdminLogin: func(message, csrfToken string) templ.Component {
			return textComponent("admin login " + message)
		},
		NotFound:    func() templ.Component { return textComponent("not found") },
		ServerError: func() templ.Component { return textComponent("server error") },
	}
}

// setupTestApp wires an App the way Start does, minus the listener and the
// weekly aggregator, so requests can be driven through Echo directly.
func setupTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	cfg := SiteConfig{
		Name:                  "Test Site",
		URL:                   "http://test.local",
		DatabasePath:          filepath.Join(dir, "blog.db"),
		AnalyticsDatabasePath: filepath.Join(dir, "analytics.db"),
		AdminEmail:            testAdminEmail,
		AdminPassword:         testAdminPassword,
		PublishToken:          testPublishToken,
		SessionSecret:         "test-session-secret",
	}
	a := New(cfg, stubViews())

	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	a.Store = store

	analyticsStore, err := analytics.NewStore(cfg.AnalyticsDatabasePath)
	if err != nil {
		t.Fatalf("analytics.NewStore failed: %v", err)
	}
	a.Analytics = analyticsStore

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.setupMiddleware()
	a.setupRoutes()

	t.Cleanup(func() {
		store.Close()
		analyticsStore.Close()
	})
	return a
}

// testClient drives requests through the app while carrying cookies
// between them, like a browser would.
type testClient struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, a *App) *testClient {
	return &testClient{t: t, app: a, cookies: make(map[string]*http.Cookie)}
}

func (tc *testClient) do(method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	tc.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	tc.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		tc.cookies[ck.Name] = ck
	}
	return rec
}

// csrfToken fetches the login page if needed and returns the double-submit
// token from the cookie.
func (tc *testClient) csrfToken() string {
	tc.t.Helper()
	if _, ok := tc.cookies["_csrf"]; !ok {
		tc.do(http.MethodGet, "/admin", "", nil)
	}
	ck, ok := tc.cookies["_csrf"]
	if !ok {
		tc.t.Fatal("no _csrf cookie after GET /admin")
	}
	return ck.Value
}

func (tc *testClient) login(email, password string) *httptest.ResponseRecorder {
	tc.t.Helper()
	form := url.Values{
		"email":    {email},
		"password": {password},
		"_csrf":    {tc.csrfToken()},
	}
	return tc.do(http.MethodPost, "/admin", echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
}

func countAllPosts(t *testing.T, s *Store) int {
	t.Helper()
	n := 0
	for _, target := range []string{TargetBlog, TargetWork, TargetNone} {
		posts, err := s.ListPosts(target, nil)
		if err != nil {
			t.Fatalf("ListPosts(%s) failed: %v", target, err)
		}
		n += len(posts)
	}
	return n
}

func TestAnonymousPublishRedirectsWithoutMutation(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	form := url.Values{
		"title":  {"Sneaky"},
		"target": {TargetBlog},
		"token":  {testPublishToken},
		"body":   {"<p>hi</p>"},
	}
	rec := tc.do(http.MethodPost, "/publish", echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anonymous POST /publish status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Errorf("redirect location = %q, want /", loc)
	}
	if n := countAllPosts(t, a.Store); n != 0 {
		t.Errorf("post count after anonymous publish = %d, want 0", n)
	}
}

func TestAnonymousUploadRedirectsWithoutMutation(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("upload", "pic.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fw.Write([]byte("not a real png"))
	mw.Close()

	rec := tc.do(http.MethodPost, "/upload", mw.FormDataContentType(), &buf)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("anonymous POST /upload status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin" {
		t.Errorf("redirect location = %q, want /admin", loc)
	}
	if _, err := a.Store.GetImage(ImageID("pic.png")); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected no stored image, got err %v", err)
	}
}

func TestMissingPostTouchesNoCounters(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	rec := tc.do(http.MethodGet, "/blog/blog_does-not-exist", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET missing post status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("body = %q, want the not-found page", rec.Body.String())
	}

	views, err := a.Analytics.SiteViews()
	if err != nil {
		t.Fatalf("SiteViews failed: %v", err)
	}
	if views != 0 {
		t.Errorf("site views after missing post = %d, want 0", views)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	rec := tc.login(testAdminEmail, "wrong-password")
	if rec.Code != http.StatusOK {
		t.Fatalf("failed login status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Wrong Credentials!") {
		t.Errorf("body = %q, want the wrong-credentials message", rec.Body.String())
	}

	// Still anonymous: the publish form stays gated.
	rec = tc.do(http.MethodGet, "/publish", "", nil)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("GET /publish after failed login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestLoginAndPublishFlow(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	rec := tc.login(testAdminEmail, testAdminPassword)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Errorf("login redirect = %q, want /", loc)
	}

	rec = tc.do(http.MethodGet, "/publish", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /publish after login status = %d, want %d", rec.Code, http.StatusOK)
	}

	form := url.Values{
		"title":       {"First Post"},
		"description": {"hello"},
		"target":      {TargetBlog},
		"tags":        {"go, web"},
		"body":        {"<p>hello world</p>"},
		"token":       {testPublishToken},
		"_csrf":       {tc.csrfToken()},
	}
	rec = tc.do(http.MethodPost, "/publish", echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("publish status = %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	loc := rec.Header().Get(echo.HeaderLocation)
	if !strings.HasPrefix(loc, "/blog/blog_") {
		t.Fatalf("publish redirect = %q, want /blog/blog_...", loc)
	}

	id := strings.TrimPrefix(loc, "/blog/")
	entry, err := a.Store.GetPost(id)
	if err != nil {
		t.Fatalf("GetPost after publish failed: %v", err)
	}
	if entry.Title != "First Post" || entry.Views != 1 {
		t.Errorf("entry = %+v, want title First Post with 1 view", entry)
	}
	if len(entry.Tags) != 2 || entry.Tags[0] != "go" || entry.Tags[1] != "web" {
		t.Errorf("entry tags = %v, want [go web]", entry.Tags)
	}
	body, err := a.Store.GetPostBody(id)
	if err != nil {
		t.Fatalf("GetPostBody after publish failed: %v", err)
	}
	if body.Body != "<p>hello world</p>" {
		t.Errorf("body = %q, want the submitted body", body.Body)
	}
}

func TestPublishBadTokenKeepsDraft(t *testing.T) {
	a := setupTestApp(t)
	tc := newTestClient(t, a)

	if rec := tc.login(testAdminEmail, testAdminPassword); rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	form := url.Values{
		"title":  {"Draft Title"},
		"target": {TargetBlog},
		"body":   {"draft body"},
		"token":  {"nope"},
		"_csrf":  {tc.csrfToken()},
	}
	rec := tc.do(http.MethodPost, "/publish", echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
	if rec.Code != http.StatusOK {
		t.Fatalf("bad-token publish status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); !strings.Contains(got, "title=Draft Title") || !strings.Contains(got, "body=draft body") {
		t.Errorf("re-rendered form lost the draft: %q", got)
	}
	if n := countAllPosts(t, a.Store); n != 0 {
		t.Errorf("post count after bad-token publish = %d, want 0", n)
	}
}

package blogspace

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.AdminLogin("", CsrfToken(c)))
}

// handleAdminLogin checks the credential pair against the configured admin
// email and password. On match the session is marked authenticated for the
// lifetime of the cookie; on mismatch the login form is re-rendered with a
// message. There is no logout endpoint.
func (a *App) handleAdminLogin(c echo.Context) error {
	if IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := c.FormValue("email")
	password := c.FormValue("password")

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.Config.AdminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Config.AdminPassword)) == 1
	if emailOK && passOK {
		if err := setAdminSession(c, email); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.AdminLogin("Wrong Credentials!", CsrfToken(c)))
}

func (a *App) handlePublishForm(c echo.Context) error {
	if !IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.PublishForm(PublishDraft{}, CsrfToken(c)))
}

// handlePublish creates a new post. The paired index and body rows are
// written in one transaction, so a post never exists half-created. A bad
// token silently re-presents the form with the submitted values intact,
// per the original behavior.
func (a *App) handlePublish(c echo.Context) error {
	if !IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	draft := PublishDraft{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Target:      c.FormValue("target"),
		Tags:        c.FormValue("tags"),
		Body:        c.FormValue("body"),
	}

	token := c.FormValue("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Config.PublishToken)) != 1 {
		return Render(c, a.Views.PublishForm(draft, CsrfToken(c)))
	}
	if !ValidTarget(draft.Target) {
		return Render(c, a.Views.PublishForm(draft, CsrfToken(c)))
	}

	now := time.Now()
	entry := PostEntry{
		ID:          NewPostID(draft.Target),
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        SplitTags(draft.Tags),
		Created:     now.Format("2006-01-02"),
		CreatedAt:   now.Unix(),
		Views:       1,
		Target:      draft.Target,
	}
	if err := a.Store.CreatePost(entry, draft.Body); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/blog/"+entry.ID)
}

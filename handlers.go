package blogspace

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	a.recordVisit(c)
	return Render(c, a.Views.Home())
}

// handleSpace serves the post listing for a target. The tags query parameter
// narrows the listing to posts whose tag set contains every requested tag.
func (a *App) handleSpace(target string) echo.HandlerFunc {
	return func(c echo.Context) error {
		a.recordVisit(c)
		tags := SplitTags(c.QueryParam("tags"))
		posts, err := a.Store.ListPosts(target, tags)
		if err != nil {
			return err
		}
		return Render(c, a.Views.PostList(target, posts, tags))
	}
}

// handleNoneSpace lists unfiled posts; owner-only.
func (a *App) handleNoneSpace(c echo.Context) error {
	if !IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	tags := SplitTags(c.QueryParam("tags"))
	posts, err := a.Store.ListPosts(TargetNone, tags)
	if err != nil {
		return err
	}
	return Render(c, a.Views.PostList(TargetNone, posts, tags))
}

// handlePost serves a single post. A missing id renders the 404 page without
// touching any counters; for found posts the view counter increment and the
// visit record are best-effort.
func (a *App) handlePost(c echo.Context) error {
	id := c.Param("postId")
	entry, err := a.Store.GetPost(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	body, err := a.Store.GetPostBody(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}

	if err := a.Store.IncrementViews(id); err != nil {
		c.Logger().Errorf("increment views for %s: %v", id, err)
	} else {
		entry.Views++
	}
	a.recordVisit(c)

	shareURL := url.QueryEscape(a.Config.URL + c.Request().URL.RequestURI())
	return Render(c, a.Views.Post(entry, body, shareURL))
}

// handleResume serves the static resume file and bumps its dedicated
// counter; per-address counters are untouched.
func (a *App) handleResume(c echo.Context) error {
	if err := a.Analytics.RecordResumeVisit(); err != nil {
		c.Logger().Errorf("record resume visit: %v", err)
	}
	return c.File(a.Config.ResumePath)
}

// handleImage serves stored image bytes. All uploads are served as JPEG
// regardless of original format, matching what the upload pipeline stores.
func (a *App) handleImage(c echo.Context) error {
	// The param may arrive still percent-encoded; normalize before deriving
	// the storage key so both forms hit the same row.
	filename := c.Param("filename")
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}
	img, err := a.Store.GetImage(ImageID(filename))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return c.Blob(http.StatusOK, "image/jpeg", img.Data)
}

func (a *App) handleStatic(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(filepath.Join(a.staticDir, name))
	}
}

// recordVisit tracks a page view, fire-and-forget. Failures are logged, not
// propagated; a broken counter must never fail a page render.
func (a *App) recordVisit(c echo.Context) {
	if err := a.Analytics.RecordVisit(c.RealIP(), c.Request().UserAgent()); err != nil {
		c.Logger().Errorf("record visit: %v", err)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

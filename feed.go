package blogspace

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleFeed serves an RSS feed of the blog space, newest first.
func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.ListPosts(TargetBlog, nil)
	if err != nil {
		return err
	}

	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", p.Created); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", p.ID)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Description,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rss{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

// Package views provides a minimal default set of templ components so a
// blogspace site runs out of the box. Sites that want their own look
// provide their own ViewFuncs instead.
package views

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/sayaksen/blogspace"
)

// Site carries the branding values templates need.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// Default returns ViewFuncs backed by the built-in templates.
func Default(site Site) blogspace.ViewFuncs {
	return blogspace.ViewFuncs{
		Home: func() templ.Component {
			return component(homeTmpl, Page{Site: site, Title: site.Name})
		},
		PostList: func(space string, posts []blogspace.PostEntry, activeTags []string) templ.Component {
			return component(listTmpl, listData{
				Page:       Page{Site: site, Title: titleCase(space) + " — " + site.Name},
				Space:      space,
				Posts:      posts,
				ActiveTags: activeTags,
			})
		},
		Post: func(entry blogspace.PostEntry, body blogspace.PostBody, shareURL string) templ.Component {
			return component(postTmpl, postData{
				Page:     Page{Site: site, Title: entry.Title + " — " + site.Name},
				Entry:    entry,
				Body:     template.HTML(body.Body),
				ShareURL: shareURL,
			})
		},
		PublishForm: func(draft blogspace.PublishDraft, csrfToken string) templ.Component {
			return component(publishTmpl, formData{
				Page:      Page{Site: site, Title: "Publish — " + site.Name},
				Draft:     draft,
				CSRFToken: csrfToken,
			})
		},
		AdminLogin: func(message, csrfToken string) templ.Component {
			return component(loginTmpl, formData{
				Page:      Page{Site: site, Title: "Admin — " + site.Name},
				Message:   message,
				CSRFToken: csrfToken,
			})
		},
		NotFound: func() templ.Component {
			return component(notFoundTmpl, Page{Site: site, Title: "Not Found — " + site.Name})
		},
		ServerError: func() templ.Component {
			return component(errorTmpl, Page{Site: site, Title: "Error — " + site.Name})
		},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// component wraps an html/template execution as a templ.Component.
func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.Execute(w, data)
	})
}

// Page carries the values every template needs.
type Page struct {
	Site  Site
	Title string
}

type listData struct {
	Page
	Space      string
	Posts      []blogspace.PostEntry
	ActiveTags []string
}

type postData struct {
	Page
	Entry    blogspace.PostEntry
	Body     template.HTML
	ShareURL string
}

type formData struct {
	Page
	Draft     blogspace.PublishDraft
	Message   string
	CSRFToken string
}

const layoutHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<nav><a href="/">{{.Site.Name}}</a> · <a href="/blogSpace">blog</a> · <a href="/workSpace">work</a> · <a href="/resume">resume</a></nav>
`

const layoutFoot = `</body>
</html>
`

var homeTmpl = template.Must(template.New("home").Parse(layoutHead + `
<h1>{{.Site.Name}}</h1>
<p>{{.Site.Description}}</p>
` + layoutFoot))

var listTmpl = template.Must(template.New("list").Parse(layoutHead + `
<h1>{{.Space}}</h1>
{{if .ActiveTags}}<p>filtered by: {{range .ActiveTags}}<span>{{.}}</span> {{end}}</p>{{end}}
<ul>
{{range .Posts}}
<li>
  <a href="{{.Link}}">{{.Title}}</a>
  <p>{{.Description}}</p>
  <small>{{.Created}} · {{.Views}} views{{range .Tags}} · {{.}}{{end}}</small>
</li>
{{else}}
<li>Nothing here yet.</li>
{{end}}
</ul>
` + layoutFoot))

var postTmpl = template.Must(template.New("post").Parse(layoutHead + `
<article>
<h1>{{.Entry.Title}}</h1>
<p><small>{{.Entry.Created}} · {{.Entry.Views}} views{{range .Entry.Tags}} · {{.}}{{end}}</small></p>
{{.Body}}
</article>
<p><a href="https://twitter.com/intent/tweet?url={{.ShareURL}}">Share</a></p>
` + layoutFoot))

var publishTmpl = template.Must(template.New("publish").Parse(layoutHead + `
<h1>Publish</h1>
<form method="post" action="/publish">
<input type="hidden" name="_csrf" value="{{.CSRFToken}}">
<p><input name="title" placeholder="Title" value="{{.Draft.Title}}"></p>
<p><input name="description" placeholder="Description" value="{{.Draft.Description}}"></p>
<p><select name="target"><option{{if eq .Draft.Target "blog"}} selected{{end}}>blog</option><option{{if eq .Draft.Target "work"}} selected{{end}}>work</option><option{{if eq .Draft.Target "none"}} selected{{end}}>none</option></select></p>
<p><input name="tags" placeholder="tag1, tag2" value="{{.Draft.Tags}}"></p>
<p><textarea name="body" rows="20">{{.Draft.Body}}</textarea></p>
<p><input name="token" type="password" placeholder="Publish token"></p>
<p><button type="submit">Submit</button></p>
</form>
` + layoutFoot))

var loginTmpl = template.Must(template.New("login").Parse(layoutHead + `
<h1>Admin</h1>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<form method="post" action="/admin">
<input type="hidden" name="_csrf" value="{{.CSRFToken}}">
<p><input name="email" type="email" placeholder="Email"></p>
<p><input name="password" type="password" placeholder="Password"></p>
<p><button type="submit">Log in</button></p>
</form>
` + layoutFoot))

var notFoundTmpl = template.Must(template.New("404").Parse(layoutHead + `
<h1>404</h1>
<p>That page does not exist. <a href="/">Go home.</a></p>
` + layoutFoot))

var errorTmpl = template.Must(template.New("500").Parse(layoutHead + `
<h1>Something went wrong</h1>
<p>Try again in a bit.</p>
` + layoutFoot))

package blogspace

// SiteConfig holds all configuration for a blogspace site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name

	Addr         string // Listen address (default ":3000")
	DatabasePath string // Content SQLite path (default "data/blog.db")

	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	AdminEmail    string // Required: admin login email
	AdminPassword string // Required: admin login password
	PublishToken  string // Required: shared secret checked on every publish
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ResumePath string // Static resume file served at /resume (default "static/resume.pdf")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.ResumePath == "" {
		c.ResumePath = "static/resume.pdf"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets such as favicon.ico,
// robots.txt and sitemap.xml (default "static").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

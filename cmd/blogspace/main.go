package main

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sayaksen/blogspace"
	"github.com/sayaksen/blogspace/views"
)

// config is the environment surface of the server. A .env file is loaded
// first when present; real environment variables win.
type config struct {
	SiteName        string `env:"SITE_NAME" envDefault:"Blog"`
	SiteURL         string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	SiteDescription string `env:"SITE_DESCRIPTION"`
	SiteAuthor      string `env:"SITE_AUTHOR"`

	Addr                  string `env:"ADDR" envDefault:":3000"`
	DatabasePath          string `env:"DATABASE_PATH" envDefault:"data/blog.db"`
	AnalyticsDatabasePath string `env:"ANALYTICS_DATABASE_PATH" envDefault:"data/analytics.db"`
	StaticDir             string `env:"STATIC_DIR" envDefault:"static"`
	ResumePath            string `env:"RESUME_PATH" envDefault:"static/resume.pdf"`

	AdminEmail    string `env:"ADMIN_EMAIL,required"`
	AdminPassword string `env:"ADMIN_PASSWORD,required"`
	PublishToken  string `env:"PUBLISH_TOKEN,required"`
	SessionSecret string `env:"SESSION_SECRET,required"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"false"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	site := views.Site{
		Name:        cfg.SiteName,
		URL:         cfg.SiteURL,
		Description: cfg.SiteDescription,
		Author:      cfg.SiteAuthor,
	}

	app := blogspace.New(
		blogspace.SiteConfig{
			Name:                  cfg.SiteName,
			URL:                   cfg.SiteURL,
			Description:           cfg.SiteDescription,
			Author:                cfg.SiteAuthor,
			Addr:                  cfg.Addr,
			DatabasePath:          cfg.DatabasePath,
			AnalyticsDatabasePath: cfg.AnalyticsDatabasePath,
			AdminEmail:            cfg.AdminEmail,
			AdminPassword:         cfg.AdminPassword,
			PublishToken:          cfg.PublishToken,
			SessionSecret:         cfg.SessionSecret,
			CookieSecure:          cfg.CookieSecure,
			ResumePath:            cfg.ResumePath,
		},
		views.Default(site),
		blogspace.WithStaticDir(cfg.StaticDir),
	)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

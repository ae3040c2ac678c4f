package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/comment-moderation-api/internal/akismet"
	"github.com/comment-moderation-api/internal/auth"
	"github.com/comment-moderation-api/internal/config"
	"github.com/comment-moderation-api/internal/database"
	"github.com/comment-moderation-api/internal/models"
	"github.com/comment-moderation-api/internal/moderation"
	"github.com/comment-moderation-api/internal/repository"
	"github.com/comment-moderation-api/internal/service"
	"github.com/comment-moderation-api/pkg/logger"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "commentctl",
		Usage: "operate the comment moderation service",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "warn",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		checkCmd,
		verifyKeyCmd,
		migrateCmd,
		userCmd,
		tokenCmd,
	}

	return app.Run(args)
}

func setup(cctx *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cctx.String("log-level"), "pretty"), nil
}

func newAkismet(cfg *config.Config, log zerolog.Logger) (*akismet.Client, error) {
	return akismet.NewClient(akismet.Config{
		APIKey:     cfg.Akismet.APIKey,
		BlogURL:    cfg.Akismet.BlogURL,
		Endpoint:   cfg.Akismet.Endpoint,
		Timeout:    cfg.Akismet.Timeout,
		MaxRetries: cfg.Akismet.MaxRetries,
		IsTest:     cfg.Akismet.IsTest,
	}, log)
}

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "run the configured moderation policy against a comment",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "body", Required: true},
		&cli.StringFlag{Name: "author", Value: "commentctl"},
		&cli.StringFlag{Name: "email"},
		&cli.StringFlag{Name: "url"},
		&cli.StringFlag{Name: "ip", Value: "127.0.0.1"},
		&cli.IntFlag{
			Name:  "published-days-ago",
			Usage: "age of the article; negative means unpublished",
			Value: 0,
		},
		&cli.BoolFlag{
			Name:  "disabled",
			Usage: "treat the article as having comments disabled",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, log, err := setup(cctx)
		if err != nil {
			return err
		}

		var checker moderation.SpamChecker
		if cfg.Moderation.UseAkismet {
			client, err := newAkismet(cfg, log)
			if err != nil {
				return err
			}
			checker = client
		}

		moderator, err := moderation.NewModerator(cfg.Policy(), checker, log)
		if err != nil {
			return err
		}

		now := time.Now()
		article := &models.Article{
			ID:             "commentctl",
			Slug:           "commentctl",
			EnableComments: !cctx.Bool("disabled"),
		}
		if days := cctx.Int("published-days-ago"); days >= 0 {
			published := now.Add(-time.Duration(days) * 24 * time.Hour)
			article.PublicationDate = &published
		}

		res, err := moderator.Moderate(cctx.Context, moderation.Input{
			Comment: &models.Comment{
				UserName:  cctx.String("author"),
				UserEmail: cctx.String("email"),
				UserURL:   cctx.String("url"),
				Body:      cctx.String("body"),
			},
			Article: article,
			Request: models.RequestMeta{IPAddress: cctx.String("ip")},
			Now:     now,
		})
		if err != nil {
			return err
		}

		out := map[string]interface{}{
			"decision":    res.Decision,
			"allowed":     res.Allowed,
			"moderated":   res.Moderated,
			"removed":     res.Removed,
			"reason":      res.Reason,
			"detail":      res.Detail,
			"spam_status": res.SpamStatus,
			"open":        moderator.CommentsAreOpen(article),
		}
		if res.SpamErr != nil {
			out["spam_error"] = res.SpamErr.Error()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var verifyKeyCmd = &cli.Command{
	Name:  "verify-key",
	Usage: "check the configured Akismet key",
	Action: func(cctx *cli.Context) error {
		cfg, log, err := setup(cctx)
		if err != nil {
			return err
		}

		client, err := newAkismet(cfg, log)
		if err != nil {
			return err
		}
		if err := client.VerifyKey(cctx.Context); err != nil {
			return err
		}

		fmt.Println("akismet key is valid for", cfg.Akismet.BlogURL)
		return nil
	},
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "manage the database schema",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "apply all pending migrations",
			Action: func(cctx *cli.Context) error {
				return withDB(cctx, func(cfg *config.Config, db *database.DB) error {
					return db.RunMigrations(cfg.Database.MigrationsPath)
				})
			},
		},
		{
			Name:  "down",
			Usage: "roll back all migrations",
			Action: func(cctx *cli.Context) error {
				return withDB(cctx, func(cfg *config.Config, db *database.DB) error {
					return db.MigrateDown(cfg.Database.MigrationsPath)
				})
			},
		},
		{
			Name:  "to",
			Usage: "migrate to a specific version",
			Flags: []cli.Flag{
				&cli.UintFlag{Name: "version", Required: true},
			},
			Action: func(cctx *cli.Context) error {
				return withDB(cctx, func(cfg *config.Config, db *database.DB) error {
					return db.MigrateToVersion(cfg.Database.MigrationsPath, cctx.Uint("version"))
				})
			},
		},
	},
}

var userCmd = &cli.Command{
	Name:  "user",
	Usage: "manage staff accounts",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "create a staff user",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "role", Value: models.RoleAdmin, Usage: "admin, editor or viewer"},
			},
			Action: func(cctx *cli.Context) error {
				return withServices(cctx, func(services *service.Services) error {
					user := &models.User{
						Email:  cctx.String("email"),
						Name:   cctx.String("name"),
						Role:   cctx.String("role"),
						Active: true,
					}
					if err := services.Admin.CreateStaff(cctx.Context, user); err != nil {
						return err
					}
					fmt.Println(user.ID)
					return nil
				})
			},
		},
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "issue an admin token for a staff user",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
	},
	Action: func(cctx *cli.Context) error {
		return withServices(cctx, func(services *service.Services) error {
			ctx, cancel := context.WithTimeout(cctx.Context, 10*time.Second)
			defer cancel()

			token, err := services.Admin.IssueToken(ctx, cctx.String("email"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		})
	},
}

func withDB(cctx *cli.Context, fn func(cfg *config.Config, db *database.DB) error) error {
	cfg, log, err := setup(cctx)
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cfg, db)
}

// withServices builds the admin services on top of the database, without a moderator
func withServices(cctx *cli.Context, fn func(services *service.Services) error) error {
	return withDB(cctx, func(cfg *config.Config, db *database.DB) error {
		services := service.NewServices(service.Deps{
			Repos:  repository.New(db),
			Tokens: auth.NewJWTService(cfg.Admin.JWTSecret, cfg.Admin.TokenTTLHours),
		}, cfg, zerolog.Nop())
		return fn(services)
	})
}

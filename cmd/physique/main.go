package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/aws/aws-lambda-go/lambda"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/bzimmer/physique"
)

func defaults(c *cli.Context) (*physique.Defaults, error) {
	if !c.IsSet("defaults") {
		log.Info().Str("file", "etc/defaults.json").Msg("defaults")
		return physique.EmbeddedDefaults()
	}
	log.Info().Str("file", c.String("defaults")).Msg("defaults")
	fp, err := os.Open(c.String("defaults"))
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return physique.ReadDefaults(fp)
}

func store(c *cli.Context) (physique.Store, func() error, error) {
	switch c.String("store") {
	case "file":
		log.Info().Str("dir", c.String("data-dir")).Msg("store")
		return physique.NewFileStore(c.String("data-dir")), func() error { return nil }, nil
	case "firestore":
		log.Info().Str("project", c.String("project")).Str("collection", c.String("collection")).Msg("store")
		client, err := firestore.NewClient(c.Context, c.String("project"))
		if err != nil {
			return nil, nil, err
		}
		s := physique.NewFirestoreStore(client, c.String("collection"))
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", c.String("store"))
	}
}

// token produces a random token of length `n`
func token(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func newEngine(c *cli.Context) (*echo.Echo, func() error, error) {
	dflts, err := defaults(c)
	if err != nil {
		return nil, nil, err
	}
	st, closer, err := store(c)
	if err != nil {
		return nil, nil, err
	}
	gemini, err := physique.NewGemini(c.Context, c.String("gemini-api-key"), c.String("model"))
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	shutdown := func() error {
		return errors.Join(gemini.Close(), closer())
	}

	baseURL := c.String("base-url")
	u, err := url.Parse(baseURL)
	if err != nil {
		_ = shutdown()
		return nil, nil, err
	}

	accounts := physique.NewAccounts(st, dflts)
	srv := &physique.Server{
		Accounts:   accounts,
		Analyzer:   physique.NewAnalyzer(gemini, accounts),
		SessionKey: []byte(c.String("session-key")),
		BasePath:   u.Path,
		Sentry:     c.IsSet("sentry-dsn"),
	}

	if c.IsSet("google-client-id") {
		state, err := token(16)
		if err != nil {
			_ = shutdown()
			return nil, nil, err
		}
		srv.State = state
		srv.OAuth = &oauth2.Config{
			ClientID:     c.String("google-client-id"),
			ClientSecret: c.String("google-client-secret"),
			Scopes:       []string{"openid", "email", "profile"},
			RedirectURL:  baseURL + "/auth/google/callback",
			Endpoint:     google.Endpoint,
		}
		log.Info().Msg("google sign in enabled")
	}

	return srv.Engine(), shutdown, nil
}

func serve(c *cli.Context) error {
	engine, shutdown, err := newEngine(c)
	if err != nil {
		return err
	}
	defer shutdown()
	u, err := url.Parse(c.String("base-url"))
	if err != nil {
		return err
	}
	_, port, _ := net.SplitHostPort(u.Host)
	address := fmt.Sprintf("0.0.0.0:%s", port)
	log.Info().Str("address", address).Msg("serving")
	return http.ListenAndServe(address, engine)
}

func function(c *cli.Context) error {
	engine, shutdown, err := newEngine(c)
	if err != nil {
		return err
	}
	defer shutdown()
	log.Info().Msg("running function")
	lambda.Start(physique.LambdaHandler(echoadapter.New(engine)))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := &cli.App{
		Name:     "physique",
		HelpName: "physique",
		Usage:    "Physique analysis with workout and meal plans",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "gemini-api-key",
				Required: true,
				Usage:    "Gemini API key",
				EnvVars:  []string{"GEMINI_API_KEY", "API_KEY"},
			},
			&cli.StringFlag{
				Name:    "model",
				Value:   physique.DefaultModel,
				Usage:   "Gemini model",
				EnvVars: []string{"PHYSIQUE_MODEL"},
			},
			&cli.StringFlag{
				Name:     "session-key",
				Required: true,
				Usage:    "session keypair",
				EnvVars:  []string{"PHYSIQUE_SESSION_KEY"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "http://localhost:9001",
				Usage:   "Base URL",
				EnvVars: []string{"BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   "file",
				Usage:   "persistence backend, one of file or firestore",
				EnvVars: []string{"PHYSIQUE_STORE"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory of the file store",
				EnvVars: []string{"PHYSIQUE_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "project",
				Usage:   "Google Cloud project of the firestore store",
				EnvVars: []string{"GOOGLE_CLOUD_PROJECT"},
			},
			&cli.StringFlag{
				Name:    "collection",
				Value:   "users",
				Usage:   "firestore collection",
				EnvVars: []string{"PHYSIQUE_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "google-client-id",
				Usage:   "oauth client id enabling Google sign in",
				EnvVars: []string{"GOOGLE_CLIENT_ID"},
			},
			&cli.StringFlag{
				Name:    "google-client-secret",
				Usage:   "oauth client secret",
				EnvVars: []string{"GOOGLE_CLIENT_SECRET"},
			},
			&cli.StringFlag{
				Name:    "sentry-dsn",
				Usage:   "Sentry DSN for error reporting",
				EnvVars: []string{"SENTRY_DSN"},
			},
			&cli.StringFlag{
				Name:    "environment",
				Value:   "development",
				Usage:   "deployment environment",
				EnvVars: []string{"PHYSIQUE_ENV"},
			},
			&cli.BoolFlag{
				Name:    "lambda",
				Aliases: []string{"netlify"},
				Value:   false,
				Usage:   "run as a lambda or netlify function",
				EnvVars: []string{"NETLIFY", "PHYSIQUE_LAMBDA"},
			},
			&cli.StringFlag{
				Name:  "defaults",
				Usage: "file with default profile and preferences",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			log.Error().Err(err).Msg(c.App.Name)
		},
		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			zerolog.DurationFieldUnit = time.Millisecond
			zerolog.DurationFieldInteger = false
			log.Logger = log.Output(
				zerolog.ConsoleWriter{
					Out:        c.App.ErrWriter,
					NoColor:    false,
					TimeFormat: time.RFC3339,
				},
			)
			if c.IsSet("sentry-dsn") {
				err = sentry.Init(sentry.ClientOptions{
					Dsn:         c.String("sentry-dsn"),
					Environment: c.String("environment"),
					BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
						if event.Request != nil {
							delete(event.Request.Headers, "Cookie")
							delete(event.Request.Headers, "Authorization")
						}
						return event
					},
				})
				if err != nil {
					return fmt.Errorf("sentry init: %w", err)
				}
				log.Info().Str("environment", c.String("environment")).Msg("sentry initialized")
			}
			return nil
		},
		After: func(c *cli.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Bool("lambda") {
				return function(c)
			}
			return serve(c)
		},
	}
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

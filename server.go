package physique

import (
	"net/http"
	"strings"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// GoogleUserInfo is the OpenID Connect userinfo endpoint for Google accounts
const GoogleUserInfo = "https://openidconnect.googleapis.com/v1/userinfo"

// Server wires the API routes
type Server struct {
	Accounts   *Accounts
	Analyzer   *Analyzer
	SessionKey []byte
	// BasePath prefixes every route, e.g. "/physique"
	BasePath string
	// OAuth enables Google sign in when not nil
	OAuth       *oauth2.Config
	State       string
	UserInfoURL string
	Sentry      bool
	BodyLimit   string
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("elapsed", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// Engine returns an echo instance serving the API
func (s *Server) Engine() *echo.Echo {
	limit := s.BodyLimit
	if limit == "" {
		limit = "32M"
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.HTTPErrorHandler = ErrorHandler
	engine.Use(middleware.Recover())
	if s.Sentry {
		engine.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	engine.Use(requestLogger())
	engine.Use(middleware.BodyLimit(limit))
	engine.Use(session.Middleware(sessions.NewCookieStore(s.SessionKey)))

	base := engine.Group(strings.TrimSuffix(s.BasePath, "/"))

	auth := base.Group("/auth")
	auth.POST("/signup", SignupHandler(s.Accounts))
	auth.POST("/login", LoginHandler(s.Accounts))
	auth.POST("/logout", LogoutHandler())
	if s.OAuth != nil {
		userinfo := s.UserInfoURL
		if userinfo == "" {
			userinfo = GoogleUserInfo
		}
		home := s.BasePath
		if home == "" {
			home = "/"
		}
		auth.GET("/google/login", AuthHandler(s.OAuth, s.State))
		auth.GET("/google/callback", AuthCallbackHandler(s.OAuth, s.State, userinfo, home, s.Accounts))
	}

	api := base.Group("/api")
	api.GET("/session", SessionHandler())

	user := api.Group("", RequireSession())
	user.GET("/profile", ProfileHandler(s.Accounts))
	user.PUT("/profile", SaveProfileHandler(s.Accounts))
	user.GET("/preferences", PreferencesHandler(s.Accounts))
	user.PUT("/preferences", SavePreferencesHandler(s.Accounts))
	user.POST("/analyze", AnalyzeHandler(s.Analyzer, s.Accounts))
	user.GET("/history", HistoryHandler(s.Accounts))
	user.GET("/history/:id", HistoryItemHandler(s.Accounts))
	user.GET("/stats", StatsHandler(s.Accounts))

	return engine
}

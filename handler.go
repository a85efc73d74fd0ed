package physique

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	sessionName = "physique"
	sessionUser = "email"
)

// TokenCallback completes a login once the oauth provider issued a token
type TokenCallback func(c echo.Context, t *oauth2.Token) error

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// ErrorHandler renders errors returned by handlers as JSON
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	var ve *ValidationError
	var re *RemoteError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprint(he.Message)
	case errors.As(err, &ve),
		errors.Is(err, ErrNoImages),
		errors.Is(err, ErrTooManyImages),
		errors.Is(err, ErrUnsupportedImage):
		code = http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, ErrAccountExists):
		code = http.StatusConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoHistory):
		code = http.StatusNotFound
	case errors.As(err, &re):
		code = http.StatusBadGateway
	}

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("request")
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("path", c.Path())
				hub.CaptureException(err)
			})
		}
		if code == http.StatusInternalServerError {
			msg = "An unknown error occurred."
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = errorJSON(c, code, msg)
	}
	if err != nil {
		log.Error().Err(err).Msg("error handler")
	}
}

func startSession(c echo.Context, email string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	sess.Values[sessionUser] = email
	return sess.Save(c.Request(), c.Response())
}

func sessionEmail(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	email, _ := sess.Values[sessionUser].(string)
	return email
}

func currentUser(c echo.Context) string {
	email, _ := c.Get(sessionUser).(string)
	return email
}

// RequireSession rejects requests without a logged in user
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := sessionEmail(c)
			if email == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}
			c.Set(sessionUser, email)
			return next(c)
		}
	}
}

// SessionHandler reports whether the caller is logged in
func SessionHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		email := sessionEmail(c)
		return c.JSON(http.StatusOK, map[string]any{
			"authenticated": email != "",
			"email":         email,
		})
	}
}

// SignupHandler creates a password account and logs it in
func SignupHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SignupRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		acct, err := accounts.Signup(c.Request().Context(), &req)
		if err != nil {
			return err
		}
		if err := startSession(c, acct.Email); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, acct)
	}
}

// LoginHandler verifies a password account and logs it in
func LoginHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req LoginRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		acct, err := accounts.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			return err
		}
		if err := startSession(c, acct.Email); err != nil {
			return err
		}
		log.Info().Str("email", acct.Email).Msg("login")
		return c.JSON(http.StatusOK, acct)
	}
}

// LogoutHandler clears the session
func LogoutHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if err != nil {
			return err
		}
		delete(sess.Values, sessionUser)
		sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// AuthHandler redirects to the oauth provider's credential acceptance page
func AuthHandler(c *oauth2.Config, state string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.Redirect(http.StatusFound, c.AuthCodeURL(state))
	}
}

// AuthCallbackHandler receives the callback from the oauth provider, looks up
// the user's identity and logs them in
func AuthCallbackHandler(c *oauth2.Config, state, userinfo, redirect string, accounts *Accounts) echo.HandlerFunc {
	return AuthCallbackHandlerF(c, state, func(ctx echo.Context, t *oauth2.Token) error {
		req := ctx.Request()
		resp, err := c.Client(req.Context(), t).Get(userinfo)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return echo.NewHTTPError(http.StatusBadGateway, fmt.Sprintf("userinfo returned %d", resp.StatusCode))
		}
		var info struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return err
		}
		if !info.EmailVerified {
			return echo.NewHTTPError(http.StatusForbidden, "email address not verified")
		}
		acct, err := accounts.LoginExternal(req.Context(), ProviderGoogle, info.Email, info.Name)
		if err != nil {
			return err
		}
		if err := startSession(ctx, acct.Email); err != nil {
			return err
		}
		log.Info().Str("email", acct.Email).Str("provider", string(ProviderGoogle)).Msg("login")
		return ctx.Redirect(http.StatusFound, redirect)
	})
}

// AuthCallbackHandlerF receives the callback from the oauth provider with the credentials
func AuthCallbackHandlerF(c *oauth2.Config, state string, f TokenCallback) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if s := ctx.QueryParam("state"); s != state {
			return echo.NewHTTPError(http.StatusBadRequest, "State invalid")
		}
		code := ctx.QueryParam("code")
		if code == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Code not found")
		}
		token, err := c.Exchange(ctx.Request().Context(), code)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return f(ctx, token)
	}
}

func ProfileHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, err := accounts.Profile(c.Request().Context(), currentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, profile)
	}
}

func SaveProfileHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := currentUser(c)
		profile, err := accounts.Profile(c.Request().Context(), email)
		if err != nil {
			return err
		}
		if err := c.Bind(profile); err != nil {
			return err
		}
		if err := accounts.SaveProfile(c.Request().Context(), email, profile); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, profile)
	}
}

func PreferencesHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		prefs, err := accounts.Preferences(c.Request().Context(), currentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, prefs)
	}
}

func SavePreferencesHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := currentUser(c)
		prefs, err := accounts.Preferences(c.Request().Context(), email)
		if err != nil {
			return err
		}
		if err := c.Bind(prefs); err != nil {
			return err
		}
		if err := accounts.SavePreferences(c.Request().Context(), email, prefs); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, prefs)
	}
}

func overlay(form map[string][]string, field string, v any) error {
	vals := form[field]
	if len(vals) == 0 || vals[0] == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(vals[0]), v); err != nil {
		return validationError("invalid %s: %v", field, err)
	}
	return nil
}

// AnalyzeHandler accepts up to three photos plus optional preference and
// profile overrides and returns the new history item
func AnalyzeHandler(analyzer *Analyzer, accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		email := currentUser(c)

		form, err := c.MultipartForm()
		if err != nil {
			return validationError("expected a multipart form: %v", err)
		}
		prefs, err := accounts.Preferences(ctx, email)
		if err != nil {
			return err
		}
		if err := overlay(form.Value, "preferences", prefs); err != nil {
			return err
		}
		profile, err := accounts.Profile(ctx, email)
		if err != nil {
			return err
		}
		if err := overlay(form.Value, "profile", profile); err != nil {
			return err
		}
		images, err := ReadImages(ctx, form.File["images"])
		if err != nil {
			return err
		}
		item, err := analyzer.Run(ctx, email, images, prefs, profile)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, item)
	}
}

func HistoryHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := accounts.History(c.Request().Context(), currentUser(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}
}

func HistoryItemHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		item, err := accounts.HistoryItem(c.Request().Context(), currentUser(c), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, item)
	}
}

func StatsHandler(accounts *Accounts) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := accounts.History(c.Request().Context(), currentUser(c))
		if err != nil {
			return err
		}
		stats, err := NewStats(items)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, stats)
	}
}

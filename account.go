package physique

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const placeholderAvatar = "https://via.placeholder.com/150"

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SignupRequest carries the fields of the signup form
type SignupRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Sex      Sex    `json:"sex"`
	Goal     Goal   `json:"goal"`
	Password string `json:"password"`
}

func (r *SignupRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.FullName) == "":
		return validationError("full name is required")
	case strings.TrimSpace(r.Username) == "":
		return validationError("username is required")
	case r.Password == "":
		return validationError("password is required")
	case r.Age <= 0:
		return validationError("age must be positive")
	case !oneOf(r.Sex, SexMale, SexFemale, SexOther):
		return validationError("unknown sex %q", r.Sex)
	case !oneOf(r.Goal, GoalFatLoss, GoalMuscleGain, GoalRecomposition):
		return validationError("unknown goal %q", r.Goal)
	}
	email := strings.TrimSpace(r.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return validationError("invalid email address %q", r.Email)
	}
	return nil
}

// Account is the state returned after a successful signup or login
type Account struct {
	Email       string       `json:"email"`
	Profile     *Profile     `json:"profile"`
	Preferences *Preferences `json:"preferences"`
}

// Accounts manages users and their stored records
type Accounts struct {
	store    Store
	defaults *Defaults
	mu       sync.Mutex
}

func NewAccounts(store Store, defaults *Defaults) *Accounts {
	return &Accounts{store: store, defaults: defaults}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func splitName(fullName string) (string, string) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "User", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func (a *Accounts) exists(ctx context.Context, email string) (bool, error) {
	var cred Credentials
	err := a.store.Get(ctx, email, KeyCredentials, &cred)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (a *Accounts) create(ctx context.Context, cred *Credentials, profile *Profile, prefs *Preferences) error {
	if err := a.store.Put(ctx, cred.Email, KeyProfile, profile); err != nil {
		return err
	}
	if err := a.store.Put(ctx, cred.Email, KeyPreferences, prefs); err != nil {
		return err
	}
	if err := a.store.Put(ctx, cred.Email, KeyHistory, []*HistoryItem{}); err != nil {
		return err
	}
	return a.store.Put(ctx, cred.Email, KeyCredentials, cred)
}

// Signup creates a password account seeded from the defaults
func (a *Accounts) Signup(ctx context.Context, req *SignupRequest) (*Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := normalize(req.Email)

	a.mu.Lock()
	defer a.mu.Unlock()

	ok, err := a.exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	first, last := splitName(req.FullName)
	profile := a.defaults.Profile
	profile.FirstName = first
	profile.LastName = last
	profile.Username = req.Username
	profile.Email = email
	profile.Age = req.Age
	profile.Sex = req.Sex
	profile.Avatar = placeholderAvatar

	prefs := a.defaults.Preferences
	prefs.Goal = req.Goal

	cred := &Credentials{
		Email:        email,
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
		Created:      time.Now().UTC(),
	}
	if err := a.create(ctx, cred, &profile, &prefs); err != nil {
		return nil, err
	}
	log.Info().Str("email", email).Str("provider", string(cred.Provider)).Msg("signup")
	return &Account{Email: email, Profile: &profile, Preferences: &prefs}, nil
}

// Login verifies a password account
func (a *Accounts) Login(ctx context.Context, email, password string) (*Account, error) {
	email = normalize(email)
	var cred Credentials
	if err := a.store.Get(ctx, email, KeyCredentials, &cred); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if cred.Provider != ProviderPassword || cred.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return a.account(ctx, email)
}

// LoginExternal signs in a user verified by an identity provider, creating the
// account on first use
func (a *Accounts) LoginExternal(ctx context.Context, provider Provider, email, name string) (*Account, error) {
	email = normalize(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, validationError("invalid email address %q", email)
	}

	a.mu.Lock()
	ok, err := a.exists(ctx, email)
	if err == nil && !ok {
		first, last := splitName(name)
		profile := a.defaults.Profile
		profile.FirstName = first
		profile.LastName = last
		profile.Username = strings.SplitN(email, "@", 2)[0]
		profile.Email = email
		profile.Avatar = placeholderAvatar
		prefs := a.defaults.Preferences
		cred := &Credentials{Email: email, Provider: provider, Created: time.Now().UTC()}
		err = a.create(ctx, cred, &profile, &prefs)
		if err == nil {
			log.Info().Str("email", email).Str("provider", string(provider)).Msg("signup")
		}
	}
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return a.account(ctx, email)
}

func (a *Accounts) account(ctx context.Context, email string) (*Account, error) {
	profile, err := a.Profile(ctx, email)
	if err != nil {
		return nil, err
	}
	prefs, err := a.Preferences(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Account{Email: email, Profile: profile, Preferences: prefs}, nil
}

// Profile returns the stored profile or the defaults if none was saved
func (a *Accounts) Profile(ctx context.Context, email string) (*Profile, error) {
	profile := a.defaults.Profile
	if err := a.store.Get(ctx, email, KeyProfile, &profile); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &profile, nil
}

func (a *Accounts) SaveProfile(ctx context.Context, email string, profile *Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return a.store.Put(ctx, email, KeyProfile, profile)
}

// Preferences returns the stored preferences or the defaults if none were saved
func (a *Accounts) Preferences(ctx context.Context, email string) (*Preferences, error) {
	prefs := a.defaults.Preferences
	if err := a.store.Get(ctx, email, KeyPreferences, &prefs); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &prefs, nil
}

func (a *Accounts) SavePreferences(ctx context.Context, email string, prefs *Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	return a.store.Put(ctx, email, KeyPreferences, prefs)
}

// History returns the analyses of a user, newest first
func (a *Accounts) History(ctx context.Context, email string) ([]*HistoryItem, error) {
	var items []*HistoryItem
	if err := a.store.Get(ctx, email, KeyHistory, &items); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*HistoryItem{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []*HistoryItem{}
	}
	return items, nil
}

func (a *Accounts) HistoryItem(ctx context.Context, email, id string) (*HistoryItem, error) {
	items, err := a.History(ctx, email)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("history item %s: %w", id, ErrNotFound)
}

// AppendHistory stores item ahead of all earlier analyses
func (a *Accounts) AppendHistory(ctx context.Context, email string, item *HistoryItem) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	items, err := a.History(ctx, email)
	if err != nil {
		return err
	}
	items = append([]*HistoryItem{item}, items...)
	return a.store.Put(ctx, email, KeyHistory, items)
}

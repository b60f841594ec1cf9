package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/bwmarrin/discordgo"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// Discord OAuth2 endpoints used by the Activity SDK code exchange.
var DiscordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const (
	claimUserID   = "user_id"
	claimUsername = "username"
)

type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JWTSecret    []byte
	SessionTTL   time.Duration
	Endpoint     oauth2.Endpoint
}

// TokenExchange is the result of POST /api/token. AccessToken is handed back to
// the Activity SDK, SessionToken authenticates calls to this API.
type TokenExchange struct {
	AccessToken  string              `json:"access_token"`
	SessionToken string              `json:"session_token"`
	ExpiresAt    time.Time           `json:"expires_at"`
	User         *models.SessionUser `json:"user"`
}

// UserFetcher resolves the Discord user owning an OAuth access token.
type UserFetcher func(ctx context.Context, accessToken string) (*models.SessionUser, error)

type AuthService struct {
	oauth     *oauth2.Config
	secret    []byte
	ttl       time.Duration
	fetchUser UserFetcher
	now       func() time.Time
}

func NewAuthService(cfg AuthConfig, fetchUser UserFetcher) *AuthService {
	if cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = DiscordEndpoint
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if fetchUser == nil {
		fetchUser = DiscordCurrentUser
	}
	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"identify", "guilds"},
		},
		secret:    cfg.JWTSecret,
		ttl:       cfg.SessionTTL,
		fetchUser: fetchUser,
		now:       time.Now,
	}
}

// DiscordCurrentUser calls GET /users/@me with the user's bearer token.
func DiscordCurrentUser(ctx context.Context, accessToken string) (*models.SessionUser, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}
	u, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &models.SessionUser{ID: u.ID, Username: u.Username, GlobalName: u.GlobalName, Avatar: u.Avatar}, nil
}

func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*TokenExchange, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &ValidationError{Fields: map[string]string{"code": "is required"}}
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", ErrAuthenticationFailed, err)
	}
	user, err := s.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: current user: %v", ErrAuthenticationFailed, err)
	}
	session, expiresAt, err := s.IssueSession(user)
	if err != nil {
		return nil, err
	}
	return &TokenExchange{AccessToken: tok.AccessToken, SessionToken: session, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) IssueSession(user *models.SessionUser) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.MapClaims{
		claimUserID:   user.ID,
		claimUsername: user.Username,
		"exp":         expiresAt.Unix(),
		"iat":         now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// VerifySession checks signature and expiry of a session token.
func (s *AuthService) VerifySession(token string) (*models.SessionUser, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	id, _ := claims[claimUserID].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrAuthenticationFailed, claimUserID)
	}
	username, _ := claims[claimUsername].(string)
	return &models.SessionUser{ID: id, Username: username}, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ProviderGoogle identifies Google accounts.
const ProviderGoogle = "google"

// GoogleOAuthConfig holds configuration for Google sign-in.
type GoogleOAuthConfig struct {
	ClientID        string        `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret    string        `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL     string        `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	IssuerURL       string        `env:"GOOGLE_OAUTH_ISSUER_URL" envDefault:"https://accounts.google.com"`
	Scopes          []string      `env:"GOOGLE_OAUTH_SCOPES" envSeparator:"," envDefault:"openid,profile"`
	ExchangeTimeout time.Duration `env:"GOOGLE_OAUTH_EXCHANGE_TIMEOUT" envDefault:"10s"`
}

// GoogleAdapter runs the authorization code flow with PKCE against Google
// and reads the profile from the OpenID Connect userinfo endpoint.
type GoogleAdapter struct {
	provider   *oidc.Provider
	conf       *oauth2.Config
	httpClient *http.Client
}

type GoogleOption func(*GoogleAdapter)

// WithGoogleHTTPClient sets the client used for discovery, token exchange
// and userinfo requests.
func WithGoogleHTTPClient(c *http.Client) GoogleOption {
	return func(a *GoogleAdapter) { a.httpClient = c }
}

// NewGoogleAdapter discovers the provider endpoints from cfg.IssuerURL.
func NewGoogleAdapter(ctx context.Context, cfg GoogleOAuthConfig, opts ...GoogleOption) (*GoogleAdapter, error) {
	a := &GoogleAdapter{httpClient: &http.Client{Timeout: DefaultExchangeTimeout}}
	for _, opt := range opts {
		opt(a)
	}

	issuer := cfg.IssuerURL
	if issuer == "" {
		issuer = "https://accounts.google.com"
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile"}
	}

	provider, err := oidc.NewProvider(a.clientContext(ctx), issuer)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", issuer, err)
	}

	a.provider = provider
	a.conf = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     provider.Endpoint(),
	}
	return a, nil
}

func (a *GoogleAdapter) ProviderID() string {
	return ProviderGoogle
}

// AuthURL builds the consent URL carrying state and the S256 challenge of
// verifier.
func (a *GoogleAdapter) AuthURL(state, verifier string) string {
	return a.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// ResolveProfile exchanges code and fetches the account profile.
func (a *GoogleAdapter) ResolveProfile(ctx context.Context, code, verifier string) (ProviderProfile, error) {
	ctx = a.clientContext(ctx)

	tok, err := a.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return ProviderProfile{}, errors.Join(ErrFederationExchangeFailed, err)
	}

	info, err := a.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		if ctx.Err() != nil {
			return ProviderProfile{}, errors.Join(ErrFederationExchangeFailed, err)
		}
		return ProviderProfile{}, fmt.Errorf("fetch google profile: %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&claims); err != nil {
		return ProviderProfile{}, fmt.Errorf("decode google profile: %w", err)
	}

	return ProviderProfile{
		ProviderUserID: info.Subject,
		Name:           claims.Name,
		AvatarURL:      claims.Picture,
	}, nil
}

func (a *GoogleAdapter) clientContext(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return oidc.ClientContext(ctx, a.httpClient)
}

var _ ProviderAdapter = (*GoogleAdapter)(nil)

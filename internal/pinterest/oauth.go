package pinterest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// AuthorizeURL is where the user approves the app. The sandbox flag only
// affects the API base, not authorization.
const AuthorizeURL = "https://www.pinterest.com/oauth/"

// oauthScopes is the fully inclusive permission set the bridge requests.
var oauthScopes = []string{
	"boards:read",
	"boards:write",
	"pins:read",
	"pins:write",
	"user_accounts:read",
}

// OAuth error kinds, used to pick the remediation hint shown to the user.
const (
	KindAuthorizationDenied = "authorization_denied"
	KindAuthorizationFailed = "authorization_failed"
	KindInvalidCredentials  = "invalid_credentials"
	KindRedirectMismatch    = "redirect_mismatch"
	KindSessionDecode       = "session_decode_failure"
	KindTokenExchange       = "token_exchange_failure"
)

// OAuthError is a classified failure in the authorization flow. Detail holds
// the platform's raw error text where one exists.
type OAuthError struct {
	Kind   string
	Detail string
	Err    error
}

func (e OAuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("oauth %s: %s", e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("oauth %s: %v", e.Kind, e.Err)
	}
	return "oauth " + e.Kind
}

func (e OAuthError) Unwrap() error { return e.Err }

// Session is the request-scoped credential set round-tripped through the
// OAuth state parameter. The deployment is stateless, so this is the only
// place the credentials survive the redirect hop.
type Session struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Sandbox      bool   `json:"sandbox"`
}

// EncodeState packs the session into the opaque state value.
func EncodeState(s Session) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode oauth state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// DecodeState unpacks a state value. Corruption or missing credentials yield
// a SessionDecodeFailure; the flow cannot be recovered and must restart.
func DecodeState(raw string) (Session, error) {
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		// Browsers that built the state with btoa produce standard encoding.
		data, err = base64.StdEncoding.DecodeString(raw)
	}
	if err != nil {
		return Session{}, OAuthError{Kind: KindSessionDecode, Err: err}
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, OAuthError{Kind: KindSessionDecode, Err: err}
	}
	if strings.TrimSpace(s.ClientID) == "" || strings.TrimSpace(s.ClientSecret) == "" {
		return Session{}, OAuthError{Kind: KindSessionDecode, Detail: "state is missing app credentials"}
	}
	return s, nil
}

// AuthCodeURL builds the authorization redirect. Pinterest expects the scope
// list comma separated, so the URL is assembled by hand.
func AuthCodeURL(s Session, redirectURL string) (string, error) {
	state, err := EncodeState(s)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", s.ClientID)
	params.Set("redirect_uri", redirectURL)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(oauthScopes, ","))
	params.Set("state", state)
	return AuthorizeURL + "?" + params.Encode(), nil
}

// TokenURL returns the token endpoint for the API base the session targets.
func TokenURL(sandbox bool) string {
	if sandbox {
		return SandboxBaseURL + "/oauth/token"
	}
	return ProductionBaseURL + "/oauth/token"
}

// Exchange swaps the authorization code for an access token. The platform
// requires HTTP Basic client authentication, and the redirect URL must match
// the one used in the authorize step exactly.
func Exchange(ctx context.Context, s Session, code, redirectURL string) (string, error) {
	return exchange(ctx, s, code, redirectURL, TokenURL(s.Sandbox))
}

func exchange(ctx context.Context, s Session, code, redirectURL, tokenURL string) (string, error) {
	conf := &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", classifyExchangeError(err)
	}
	return token.AccessToken, nil
}

// classifyExchangeError maps a failed token exchange onto an OAuthError,
// preferring the structured error code over substring matching on raw text.
func classifyExchangeError(err error) OAuthError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		detail := re.ErrorDescription
		if detail == "" {
			detail = string(re.Body)
		}
		switch {
		case re.ErrorCode == "invalid_client",
			re.Response != nil && re.Response.StatusCode == http.StatusUnauthorized:
			return OAuthError{Kind: KindInvalidCredentials, Detail: detail, Err: err}
		case strings.Contains(re.ErrorCode, "redirect_uri"),
			strings.Contains(string(re.Body), "redirect_uri"):
			return OAuthError{Kind: KindRedirectMismatch, Detail: detail, Err: err}
		default:
			return OAuthError{Kind: KindTokenExchange, Detail: detail, Err: err}
		}
	}
	return OAuthError{Kind: KindTokenExchange, Err: err}
}

// ClassifyAuthorizationError buckets the error string the platform sends
// back on the callback redirect.
func ClassifyAuthorizationError(errCode string) string {
	switch {
	case errCode == "access_denied":
		return KindAuthorizationDenied
	case errCode == "invalid_request" || errCode == "invalid_client":
		return KindInvalidCredentials
	case strings.Contains(errCode, "redirect"):
		return KindRedirectMismatch
	default:
		return KindAuthorizationFailed
	}
}

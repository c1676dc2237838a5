package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"pinposter/internal/pinterest"
)

// remediationHints maps an OAuth error kind to the advice shown on the
// diagnostic page.
var remediationHints = map[string]string{
	pinterest.KindAuthorizationDenied: "You declined the authorization request. Restart the flow and approve access to continue.",
	pinterest.KindInvalidCredentials:  "Check the app id and secret, and make sure the app has been approved for API access (trial access is enough for the sandbox).",
	pinterest.KindRedirectMismatch:    "The callback URL of this server is not registered for the app. Add it to the app's redirect URIs exactly as shown in the address bar.",
	pinterest.KindSessionDecode:       "The OAuth state could not be decoded, so the app credentials were lost across the redirect. Close this window and restart the flow.",
	pinterest.KindTokenExchange:       "The platform rejected the code exchange. Retry the flow; if it keeps failing, the raw error below usually names the cause.",
	pinterest.KindAuthorizationFailed: "The platform reported an authorization error. The raw error below usually names the cause.",
}

type oauthPageData struct {
	Heading string
	Hint    string
	Detail  string
}

// handleAuthStart validates the caller-supplied app credentials, packs them
// into the state parameter, and redirects to the platform authorize URL.
func (h *Handler) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := strings.TrimSpace(q.Get("client_id"))
	clientSecret := strings.TrimSpace(q.Get("client_secret"))
	if clientID == "" || clientSecret == "" {
		h.renderOAuthError(w, http.StatusBadRequest, pinterest.KindInvalidCredentials,
			"Missing app credentials", "client_id and client_secret query parameters are required")
		return
	}

	session := pinterest.Session{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Sandbox:      q.Get("sandbox") == "true",
	}

	authURL, err := pinterest.AuthCodeURL(session, h.callbackURL(r))
	if err != nil {
		h.renderOAuthError(w, http.StatusInternalServerError, pinterest.KindTokenExchange,
			"Authorization failed", err.Error())
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback finishes the OAuth flow. The three branches are mutually
// exclusive and checked in priority order: platform error, missing code,
// then the code exchange.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		detail := errCode
		if desc := q.Get("error_description"); desc != "" {
			detail += ": " + desc
		}
		kind := pinterest.ClassifyAuthorizationError(errCode)
		h.renderOAuthError(w, http.StatusBadRequest, kind, "Authorization failed", detail)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.renderOAuthError(w, http.StatusBadRequest, pinterest.KindAuthorizationFailed,
			"No authorization code", "the platform redirected back without a code or an error")
		return
	}

	session, err := pinterest.DecodeState(q.Get("state"))
	if err != nil {
		h.renderOAuthError(w, http.StatusBadRequest, pinterest.KindSessionDecode,
			"Session lost", err.Error())
		return
	}

	token, err := h.exchangeToken(r.Context(), session, code, h.callbackURL(r))
	if err != nil {
		kind := pinterest.KindTokenExchange
		var oerr pinterest.OAuthError
		if errors.As(err, &oerr) {
			kind = oerr.Kind
		}
		h.renderOAuthError(w, http.StatusInternalServerError, kind,
			"Token exchange failed", err.Error())
		return
	}

	log.Info("oauth token exchanged", "sandbox", session.Sandbox)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "callback_success.html", map[string]string{"Token": token}); err != nil {
		log.Error("failed to render success page", "err", err)
	}
}

// callbackURL rebuilds the callback from the inbound request so the exchange
// uses the exact redirect URI the authorize step embedded.
func (h *Handler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/callback"
}

func (h *Handler) renderOAuthError(w http.ResponseWriter, status int, kind, heading, detail string) {
	log.Warn("oauth flow failed", "kind", kind, "detail", detail)

	hint, ok := remediationHints[kind]
	if !ok {
		hint = remediationHints[pinterest.KindAuthorizationFailed]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := h.templates.ExecuteTemplate(w, "callback_error.html", oauthPageData{
		Heading: heading,
		Hint:    hint,
		Detail:  detail,
	})
	if err != nil {
		log.Error("failed to render error page", "err", err)
	}
}

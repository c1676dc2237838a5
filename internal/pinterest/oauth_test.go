package pinterest

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	in := Session{ClientID: "X", ClientSecret: "Y", Sandbox: true}

	state, err := EncodeState(in)
	require.NoError(t, err)

	out, err := DecodeState(state)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeStateFailures(t *testing.T) {
	t.Run("non base64 input", func(t *testing.T) {
		_, err := DecodeState("!!!definitely not base64!!!")
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindSessionDecode, oerr.Kind)
	})

	t.Run("base64 of invalid JSON", func(t *testing.T) {
		_, err := DecodeState(base64.URLEncoding.EncodeToString([]byte("not json")))
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindSessionDecode, oerr.Kind)
	})

	t.Run("missing credentials inside state", func(t *testing.T) {
		state, err := EncodeState(Session{ClientID: "X"})
		require.NoError(t, err)
		_, err = DecodeState(state)
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindSessionDecode, oerr.Kind)
	})

	t.Run("accepts standard encoding", func(t *testing.T) {
		raw := base64.StdEncoding.EncodeToString([]byte(`{"clientId":"X","clientSecret":"Y","sandbox":false}`))
		out, err := DecodeState(raw)
		require.NoError(t, err)
		assert.Equal(t, "X", out.ClientID)
	})
}

func TestAuthCodeURL(t *testing.T) {
	s := Session{ClientID: "app-id", ClientSecret: "app-secret", Sandbox: true}

	raw, err := AuthCodeURL(s, "https://host.example/callback")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.pinterest.com", u.Host)

	q := u.Query()
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://host.example/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "pins:write")
	assert.Contains(t, q.Get("scope"), "boards:read")

	decoded, err := DecodeState(q.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token request must use HTTP Basic auth")
		assert.Equal(t, "app-id", user)
		assert.Equal(t, "app-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "code-123", r.PostForm.Get("code"))
		assert.Equal(t, "https://host.example/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"token-abc","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	s := Session{ClientID: "app-id", ClientSecret: "app-secret"}
	token, err := exchange(context.Background(), s, "code-123", "https://host.example/callback", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestExchangeClassifiesFailures(t *testing.T) {
	t.Run("401 invalid_client", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client credentials."}`))
		}))
		defer srv.Close()

		_, err := exchange(context.Background(), Session{ClientID: "x", ClientSecret: "y"}, "c", "https://h/callback", srv.URL)
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindInvalidCredentials, oerr.Kind)
		assert.Contains(t, oerr.Detail, "Invalid client credentials.")
	})

	t.Run("redirect uri mismatch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"redirect_uri does not match"}`))
		}))
		defer srv.Close()

		_, err := exchange(context.Background(), Session{ClientID: "x", ClientSecret: "y"}, "c", "https://h/callback", srv.URL)
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindRedirectMismatch, oerr.Kind)
	})

	t.Run("other failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`upstream on fire`))
		}))
		defer srv.Close()

		_, err := exchange(context.Background(), Session{ClientID: "x", ClientSecret: "y"}, "c", "https://h/callback", srv.URL)
		var oerr OAuthError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, KindTokenExchange, oerr.Kind)
	})
}

func TestClassifyAuthorizationError(t *testing.T) {
	assert.Equal(t, KindAuthorizationDenied, ClassifyAuthorizationError("access_denied"))
	assert.Equal(t, KindInvalidCredentials, ClassifyAuthorizationError("invalid_request"))
	assert.Equal(t, KindInvalidCredentials, ClassifyAuthorizationError("invalid_client"))
	assert.Equal(t, KindRedirectMismatch, ClassifyAuthorizationError("redirect_uri_mismatch"))
	assert.Equal(t, KindAuthorizationFailed, ClassifyAuthorizationError("server_error"))
}

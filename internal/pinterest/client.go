// Package pinterest talks to the Pinterest v5 REST API: pin creation, board
// listing, and the OAuth authorization-code flow.
package pinterest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pinposter/internal/models"
)

const (
	// ProductionBaseURL is the live v5 API.
	ProductionBaseURL = "https://api.pinterest.com/v5"
	// SandboxBaseURL is the trial API selected by the sandbox flag.
	SandboxBaseURL = "https://api-sandbox.pinterest.com/v5"
)

// sharedHTTPClient is reused across requests so connections are pooled.
var sharedHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Client is an authenticated Pinterest API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a client for the production or sandbox API.
func NewClient(token string, sandbox bool) *Client {
	base := ProductionBaseURL
	if sandbox {
		base = SandboxBaseURL
	}
	return &Client{
		BaseURL:    base,
		Token:      token,
		HTTPClient: sharedHTTPClient,
	}
}

// PublishError carries the platform's error payload verbatim so the caller
// can diagnose rejections.
type PublishError struct {
	StatusCode int
	Body       string
}

func (e PublishError) Error() string {
	return fmt.Sprintf("pinterest API error (status %d): %s", e.StatusCode, e.Body)
}

// Submission is one create-pin request. Description is expected to already
// include the hashtags (see JoinHashtags).
type Submission struct {
	BoardID     string
	Title       string
	Description string
	AltText     string
	Link        string
	ImageBytes  []byte
}

// CreatePin publishes the pin with an inline base64 image payload and
// returns the platform-assigned pin id.
func (c *Client) CreatePin(ctx context.Context, sub Submission) (string, error) {
	payload := map[string]any{
		"board_id":    sub.BoardID,
		"title":       sub.Title,
		"description": sub.Description,
		"alt_text":    sub.AltText,
		"link":        sub.Link,
		"media_source": map[string]string{
			"source_type":  "image_base64",
			"content_type": "image/jpeg",
			"data":         base64.StdEncoding.EncodeToString(sub.ImageBytes),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/pins", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create pin request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", PublishError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	return created.ID, nil
}

// ListBoards returns the boards visible to the token.
func (c *Client) ListBoards(ctx context.Context) ([]models.Board, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/boards?page_size=100", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create boards request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boards request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, PublishError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var listing struct {
		Items []models.Board `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode boards response: %w", err)
	}
	return listing.Items, nil
}

// NormalizeLink turns the caller-supplied destination into an absolute URL.
// Empty values and bare schemes fall back to the configured default site;
// scheme-less hosts get https:// prefixed. Already-valid absolute URLs pass
// through unchanged.
func NormalizeLink(link, defaultSite string) string {
	link = strings.TrimSpace(link)
	if link == "" || link == "https://" || link == "http://" {
		return defaultSite
	}
	if !strings.HasPrefix(link, "https://") && !strings.HasPrefix(link, "http://") {
		return "https://" + link
	}
	return link
}

// JoinHashtags appends the hashtags to the description as "#tag" tokens,
// space joined. Tags are used as-is; internal spaces are not normalized.
func JoinHashtags(description string, hashtags []string) string {
	if len(hashtags) == 0 {
		return description
	}
	tags := make([]string, len(hashtags))
	for i, tag := range hashtags {
		tags[i] = "#" + tag
	}
	joined := strings.Join(tags, " ")
	if description == "" {
		return joined
	}
	return description + "\n\n" + joined
}

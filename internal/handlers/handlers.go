package handlers

import (
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"pinposter/internal/config"
	"pinposter/internal/models"
	"pinposter/internal/pinterest"
	"pinposter/internal/poster"
	"pinposter/internal/seo"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler holds the dependencies for all HTTP handlers. The generator and
// client factories exist so tests can stand in for the outbound APIs.
type Handler struct {
	cfg       *config.Config
	templates *template.Template

	newGenerator  func(rc config.RequestConfig) seo.Generator
	newClient     func(token string, sandbox bool) *pinterest.Client
	exchangeToken func(ctx context.Context, s pinterest.Session, code, redirectURL string) (string, error)
}

// NewHandler creates a Handler wired to the real downstream services.
func NewHandler(cfg *config.Config) *Handler {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		log.Fatal("failed to parse templates", "err", err)
	}
	return &Handler{
		cfg:           cfg,
		templates:     tmpl,
		newGenerator:  seo.NewGenerator,
		newClient:     pinterest.NewClient,
		exchangeToken: pinterest.Exchange,
	}
}

// RegisterRoutes mounts all endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/auth/pinterest", h.handleAuthStart)
	r.Get("/callback", h.handleCallback)
	r.Get("/api/list-boards", h.handleListBoards)
	r.Post("/api/generate-only", h.handleGenerateOnly)
	r.Post("/api/post-pin", h.handlePostPin)
	r.Post("/api/compose-poster", h.handleComposePoster)
}

// handleIndex serves the static composer UI.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "static/index.html")
}

// handleListBoards is an authenticated pass-through against the boards
// endpoint, choosing the sandbox or production base per the flag.
func (h *Handler) handleListBoards(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if config.IsPlaceholderToken(token) {
		writeError(w, config.ConfigurationError{Field: "access token"})
		return
	}

	client := h.newClient(token, r.URL.Query().Get("sandbox") == "true")
	boards, err := client.ListBoards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Boards  []models.Board `json:"boards"`
	}{Success: true, Boards: boards})
}

// handleGenerateOnly runs the content generator without publishing.
func (h *Handler) handleGenerateOnly(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "title is required")
		return
	}

	rc := h.cfg.Resolve(req.Config)
	if err := rc.RequireGeneration(); err != nil {
		writeError(w, err)
		return
	}

	content, err := h.newGenerator(rc).Generate(r.Context(), req.Title, req.Language)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool               `json:"success"`
		SEOContent *models.PinContent `json:"seoContent"`
	}{Success: true, SEOContent: content})
}

// handlePostPin publishes a pin from the composed image. When the caller
// sends no description, the content generator runs first and its copy
// replaces the caller's title, hashtags, and alt text.
func (h *Handler) handlePostPin(w http.ResponseWriter, r *http.Request) {
	var req models.PostPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "title is required")
		return
	}

	rc := h.cfg.Resolve(req.Config)
	if err := rc.RequirePublish(); err != nil {
		writeError(w, err)
		return
	}

	imageBytes, err := decodeImageData(req.ImageData)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid image data: "+err.Error())
		return
	}

	title := req.Title
	description := req.Description
	hashtags := req.Hashtags
	altText := req.AltText

	if strings.TrimSpace(description) == "" {
		if err := rc.RequireGeneration(); err != nil {
			writeError(w, err)
			return
		}
		content, err := h.newGenerator(rc).Generate(r.Context(), req.Title, req.Language)
		if err != nil {
			writeError(w, err)
			return
		}
		title = content.Title
		description = content.Description
		hashtags = content.Hashtags
		altText = content.AltText
	}
	if strings.TrimSpace(altText) == "" {
		altText = title
	}

	client := h.newClient(rc.AccessToken, rc.Sandbox)
	pinID, err := client.CreatePin(r.Context(), pinterest.Submission{
		BoardID:     rc.BoardID,
		Title:       title,
		Description: pinterest.JoinHashtags(description, hashtags),
		AltText:     altText,
		Link:        pinterest.NormalizeLink(req.WebsiteURL, rc.WebsiteURL),
		ImageBytes:  imageBytes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool   `json:"success"`
		PinURL     string `json:"pinUrl"`
		FinalTitle string `json:"finalTitle"`
	}{Success: true, PinURL: "https://pinterest.com/pin/" + pinID, FinalTitle: title})
}

// handleComposePoster composes a poster server-side from two uploaded
// images and streams the JPEG back.
func (h *Handler) handleComposePoster(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "failed to parse form: file may be too large")
		return
	}

	title := r.FormValue("title")
	if strings.TrimSpace(title) == "" {
		writeErrorStatus(w, http.StatusBadRequest, "title is required")
		return
	}

	image1, err := readFormImage(r, "image1")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	image2, err := readFormImage(r, "image2")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	jpegBytes, err := poster.Compose(poster.Request{
		Title:   title,
		Image1:  image1,
		Image2:  image2,
		Caption: r.FormValue("caption"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(jpegBytes)
}

func readFormImage(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %s file", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", field, err)
	}
	return data, nil
}

// decodeImageData decodes a base64 payload, with or without a data-URL
// prefix.
func decodeImageData(data string) ([]byte, error) {
	if data == "" {
		return nil, errors.New("no image data")
	}
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	return base64.StdEncoding.DecodeString(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.APIError{Success: false, Error: msg})
}

// writeError maps component errors onto HTTP statuses. Every failure is
// request-scoped; nothing here aborts the process.
func writeError(w http.ResponseWriter, err error) {
	log.Error("request failed", "err", err)

	var cfgErr config.ConfigurationError
	var genErr seo.GenerationError
	var imgErr poster.ImageError
	var pubErr pinterest.PublishError
	switch {
	case errors.As(err, &cfgErr):
		writeErrorStatus(w, http.StatusBadRequest, cfgErr.Error())
	case errors.As(err, &genErr):
		writeErrorStatus(w, http.StatusBadGateway, genErr.Error())
	case errors.As(err, &imgErr):
		writeErrorStatus(w, http.StatusBadRequest, imgErr.Error())
	case errors.As(err, &pubErr):
		writeErrorStatus(w, http.StatusBadGateway, pubErr.Error())
	default:
		writeErrorStatus(w, http.StatusInternalServerError, err.Error())
	}
}

package models

// PinContent is the SEO copy produced by the content generator. The model is
// asked for this exact shape; anything the platform would reject (overlong
// title or alt text) fails validation instead of failing the publish later.
type PinContent struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required"`
	Hashtags    []string `json:"hashtags" validate:"required,min=1,dive,required"`
	AltText     string   `json:"altText" validate:"required,max=100"`
}

// ClientConfig carries per-request configuration overrides from the browser.
// Sandbox is a string on the wire; only the literal "true" enables it.
type ClientConfig struct {
	LLMAPIKey   string `json:"llmApiKey"`
	LLMModel    string `json:"llmModel"`
	AccessToken string `json:"accessToken"`
	BoardID     string `json:"boardId"`
	WebsiteURL  string `json:"websiteUrl"`
	Sandbox     string `json:"sandbox"`
}

// GenerateRequest is the body of POST /api/generate-only.
type GenerateRequest struct {
	Title    string       `json:"title"`
	Language string       `json:"language"`
	Config   ClientConfig `json:"config"`
}

// PostPinRequest is the body of POST /api/post-pin. ImageData is a base64
// data URL produced by the composer UI's canvas.
type PostPinRequest struct {
	ImageData   string       `json:"imageData"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Hashtags    []string     `json:"hashtags"`
	AltText     string       `json:"altText"`
	WebsiteURL  string       `json:"websiteUrl"`
	Language    string       `json:"language"`
	Config      ClientConfig `json:"config"`
}

// Board is a single board entry relayed from the platform.
type Board struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Privacy     string `json:"privacy,omitempty"`
}

// APIError is the JSON error envelope every API endpoint returns on failure.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

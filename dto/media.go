package dto

// AvatarRequest is the body of POST /avatars/generate.
type AvatarRequest struct {
	Prompt string `json:"prompt" validate:"required,max=1000"`
}

// AvatarResponse carries the generated avatar as a URL or inline data URL.
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// TranscriptionResponse is returned by both transcription endpoints.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// ProviderError is the structured body returned when an upstream provider fails.
type ProviderError struct {
	Detail   string `json:"detail"`
	Provider string `json:"provider"`
	Retry    bool   `json:"retryable"`
}

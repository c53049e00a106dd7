package scenario

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/agentsim/simcheck/common/helper"
	"github.com/agentsim/simcheck/common/image"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/harness/client"
)

// providerDown are the statuses a media endpoint may use when its upstream provider fails.
var providerDown = []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout}

var transcriptionPaths = []string{"/speech/transcribe", "/speech/transcribe-scenario"}

// Media covers avatar generation and speech transcription.
func Media() Scenario {
	return Scenario{
		Name:        "media",
		Description: "avatar and transcription require auth, validate input, and report provider outages without a 500",
		Steps:       mediaSteps,
	}
}

func audioUpload(fileName, contentType string, data []byte) *client.Upload {
	return &client.Upload{Field: "audio", FileName: fileName, ContentType: contentType, Data: data}
}

func mediaSteps() []Step {
	return []Step{
		{
			Name: "media requires auth",
			Run: func(ctx context.Context, env *Env) error {
				env.rejectsAnonymous(ctx, client.Request{
					Method: http.MethodPost,
					Path:   "/avatars/generate",
					Body:   dto.AvatarRequest{Prompt: "a calm researcher"},
				})
				for _, path := range transcriptionPaths {
					env.rejectsAnonymous(ctx, client.Request{
						Method: http.MethodPost,
						Path:   path,
						Upload: audioUpload("blank.wav", "audio/wav", []byte("RIFF")),
					})
				}
				return nil
			},
		},
		{
			Name: "avatar input validated",
			Run: func(ctx context.Context, env *Env) error {
				env.Runner.Check(ctx, client.Request{
					Name:         "avatar with empty prompt is 400",
					Method:       http.MethodPost,
					Path:         "/avatars/generate",
					Body:         dto.AvatarRequest{Prompt: ""},
					ExpectStatus: http.StatusBadRequest,
					ExpectAnyOf:  []int{http.StatusUnprocessableEntity},
				})
				return nil
			},
		},
		{
			Name: "avatar generated or provider failure reported",
			Run: func(ctx context.Context, env *Env) error {
				ok, body := env.Runner.Check(ctx, client.Request{
					Name:         "generate avatar",
					Method:       http.MethodPost,
					Path:         "/avatars/generate",
					Body:         dto.AvatarRequest{Prompt: "a thoughtful engineer with round glasses, flat illustration"},
					ExpectStatus: http.StatusOK,
					ExpectAnyOf:  providerDown,
					Timed:        true,
					Timeout:      env.Config.GenerationTimeout,
				})
				if !ok {
					return nil
				}
				url := body.String("avatar_url")
				env.Runner.Assert("avatar response carries an image or a provider error",
					image.IsDataURL(url) || strings.HasPrefix(url, "http") || body.Has("detail"),
					"neither avatar_url nor detail present")
				if image.IsDataURL(url) {
					w, h, err := image.GetImageSizeFromDataURL(url)
					env.Runner.Assert("inline avatar decodes", err == nil && w > 0 && h > 0,
						fmt.Sprintf("decoded %dx%d: %v", w, h, err))
				}
				return nil
			},
		},
		{
			Name: "transcription input validated",
			Run: func(ctx context.Context, env *Env) error {
				for _, path := range transcriptionPaths {
					env.Runner.Check(ctx, client.Request{
						Name:         path + " rejects a text file",
						Method:       http.MethodPost,
						Path:         path,
						Upload:       audioUpload("notes.txt", "text/plain", []byte("these are not audio samples")),
						ExpectStatus: http.StatusBadRequest,
						ExpectAnyOf:  []int{http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity},
					})
				}
				return nil
			},
		},
		{
			Name: "transcription or provider failure reported",
			Run: func(ctx context.Context, env *Env) error {
				wav, err := helper.SyntheticWAV(1000, 440)
				if err != nil {
					return err
				}
				for _, path := range transcriptionPaths {
					ok, body := env.Runner.Check(ctx, client.Request{
						Name:         path + " accepts a WAV clip",
						Method:       http.MethodPost,
						Path:         path,
						Upload:       audioUpload("tone.wav", "audio/wav", wav),
						ExpectStatus: http.StatusOK,
						ExpectAnyOf:  providerDown,
						Timed:        true,
						Timeout:      env.Config.GenerationTimeout,
					})
					if ok {
						env.Runner.Assert(path+" returns text or a provider error",
							body.Has("text") || body.Has("detail"), "neither text nor detail present")
					}
				}
				return nil
			},
		},
	}
}

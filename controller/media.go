package controller

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/helper"
	"github.com/agentsim/simcheck/common/image"
	"github.com/agentsim/simcheck/dto"
	"github.com/agentsim/simcheck/middleware"
)

const (
	audioField    = "audio"
	maxAudioBytes = 25 << 20

	imageProvider  = "image-generation"
	speechProvider = "speech-to-text"
)

// abortWithProviderError reports an upstream outage as a structured 502.
func abortWithProviderError(c *gin.Context, provider string, err error) {
	gmw.GetLogger(c).Warn("provider failure",
		zap.String("provider", provider),
		zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadGateway, dto.ProviderError{
		Detail:   err.Error(),
		Provider: provider,
		Retry:    true,
	})
}

func GenerateAvatar(c *gin.Context) {
	var req dto.AvatarRequest
	if !decodeJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.New("Prompt must not be empty"))
		return
	}
	if config.RefServerFailProviders {
		abortWithProviderError(c, imageProvider, errors.New("image provider unavailable"))
		return
	}

	url, err := image.RenderAvatarDataURL(req.Prompt)
	if err != nil {
		abortWithProviderError(c, imageProvider, errors.Wrap(err, "render avatar"))
		return
	}
	c.JSON(http.StatusOK, dto.AvatarResponse{AvatarURL: url})
}

// readAudio extracts and checks the uploaded audio file.
func readAudio(c *gin.Context) ([]byte, bool) {
	header, err := c.FormFile(audioField)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Errorf("multipart field %q is required", audioField))
		return nil, false
	}
	if header.Size > maxAudioBytes {
		middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, errors.New("audio file too large"))
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "open upload"))
		return nil, false
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, errors.Wrap(err, "read upload"))
		return nil, false
	}

	if len(payload) == 0 || !helper.IsAudio(header.Header.Get("Content-Type"), payload) {
		middleware.AbortWithError(c, http.StatusBadRequest,
			errors.Errorf("unsupported file type for %q", header.Filename))
		return nil, false
	}
	return payload, true
}

// transcribe stands in for a speech provider by describing the clip.
func transcribe(payload []byte) string {
	// 16 kHz mono PCM16 after a 44 byte header
	ms := 0
	if len(payload) > 44 {
		ms = (len(payload) - 44) * 1000 / (16000 * 2)
	}
	return fmt.Sprintf("Transcribed %d milliseconds of audio.", ms)
}

func TranscribeAudio(c *gin.Context) {
	payload, ok := readAudio(c)
	if !ok {
		return
	}
	if config.RefServerFailProviders {
		abortWithProviderError(c, speechProvider, errors.New("speech provider unavailable"))
		return
	}
	c.JSON(http.StatusOK, dto.TranscriptionResponse{Text: transcribe(payload)})
}

// TranscribeScenario transcribes a spoken scenario description.
func TranscribeScenario(c *gin.Context) {
	payload, ok := readAudio(c)
	if !ok {
		return
	}
	if config.RefServerFailProviders {
		abortWithProviderError(c, speechProvider, errors.New("speech provider unavailable"))
		return
	}
	c.JSON(http.StatusOK, dto.TranscriptionResponse{
		Text: "A scenario dictated by voice. " + transcribe(payload),
	})
}

package image

import (
	"bytes"
	"encoding/base64"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/Laisky/errors/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

// Regex to match data URL pattern
var dataURLPattern = regexp.MustCompile(`^data:image/([^;]+);base64,(.*)$`)

const (
	avatarSize      = 256
	avatarPadding   = 16
	avatarLineChars = 30
	avatarMaxLines  = 12
	lineHeight      = 16
)

// RenderAvatar draws a square placeholder portrait for prompt: a background tinted from the
// prompt's hash with the prompt text wrapped on top.
func RenderAvatar(prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("empty avatar prompt")
	}

	img := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{tint(prompt)}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
	}

	lines := wrapText(prompt, avatarLineChars)
	if len(lines) > avatarMaxLines {
		lines = lines[:avatarMaxLines]
	}
	for i, line := range lines {
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(avatarPadding),
			Y: fixed.I(avatarPadding + (i+1)*lineHeight),
		}
		drawer.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode avatar to PNG")
	}
	return buf.Bytes(), nil
}

// RenderAvatarDataURL wraps RenderAvatar into a data:image/png;base64 URL.
func RenderAvatarDataURL(prompt string) (string, error) {
	data, err := RenderAvatar(prompt)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsDataURL reports whether s is an inline base64 image.
func IsDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

// GetImageSizeFromDataURL decodes an inline image and returns its dimensions.
func GetImageSizeFromDataURL(dataURL string) (width int, height int, err error) {
	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if len(matches) != 3 {
		return 0, 0, errors.New("not a base64 image data URL")
	}
	return GetImageSizeFromBase64(matches[2])
}

// GetImageSizeFromBase64 decodes base64 image bytes and returns the image dimensions.
func GetImageSizeFromBase64(encoded string) (width int, height int, err error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to decode base64 image")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(decoded))
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to decode image config")
	}
	return cfg.Width, cfg.Height, nil
}

func tint(seed string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	sum := h.Sum32()
	// keep channels dark enough for white text
	return color.RGBA{
		R: uint8(40 + sum&0x7f),
		G: uint8(40 + (sum>>8)&0x7f),
		B: uint8(40 + (sum>>16)&0x7f),
		A: 255,
	}
}

// wrapText breaks long text into multiple lines, splitting words longer than a line.
func wrapText(text string, maxCharsPerLine int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	currentLine := ""
	for _, word := range words {
		if currentLine != "" && len(currentLine)+len(word)+1 > maxCharsPerLine {
			lines = append(lines, currentLine)
			currentLine = word
		} else if currentLine == "" {
			currentLine = word
		} else {
			currentLine += " " + word
		}

		for len(currentLine) > maxCharsPerLine {
			lines = append(lines, currentLine[:maxCharsPerLine])
			currentLine = currentLine[maxCharsPerLine:]
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

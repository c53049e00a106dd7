package helper

import (
	"bytes"
	"encoding/binary"
	"math"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
)

const (
	wavSampleRate    = 16000
	wavBitsPerSample = 16
	wavChannels      = 1
)

// SyntheticWAV renders a mono 16-bit PCM tone of the given length in memory.
func SyntheticWAV(milliseconds int, frequency float64) ([]byte, error) {
	if milliseconds <= 0 {
		return nil, errors.Errorf("invalid duration %dms", milliseconds)
	}

	samples := wavSampleRate * milliseconds / 1000
	dataLen := samples * wavChannels * wavBitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataLen))
	write := func(v any) {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}

	buf.WriteString("RIFF")
	write(uint32(36 + dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(wavChannels))
	write(uint32(wavSampleRate))
	write(uint32(wavSampleRate * wavChannels * wavBitsPerSample / 8))
	write(uint16(wavChannels * wavBitsPerSample / 8))
	write(uint16(wavBitsPerSample))
	buf.WriteString("data")
	write(uint32(dataLen))

	for i := range samples {
		v := math.Sin(2 * math.Pi * frequency * float64(i) / wavSampleRate)
		write(int16(v * 0.3 * math.MaxInt16))
	}

	return buf.Bytes(), nil
}

// IsAudio reports whether the declared content type or the sniffed payload looks like audio.
func IsAudio(declared string, payload []byte) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if strings.HasPrefix(declared, "audio/") {
		return true
	}
	if len(payload) >= 12 && string(payload[:4]) == "RIFF" && string(payload[8:12]) == "WAVE" {
		return true
	}
	sniffed := http.DetectContentType(payload)
	return strings.HasPrefix(sniffed, "audio/") || sniffed == "application/ogg"
}

// Package audio encodes synthesized sample buffers as PCM WAV, either
// in-memory for base64 payloads or to a file on disk.
package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavHeader is the 44-byte canonical PCM WAV header.
type wavHeader struct {
	// RIFF chunk
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte

	// fmt subchunk
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	// data subchunk
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

func newWAVHeader(sampleRate int, pcmLen uint32) wavHeader {
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16, // PCM
		AudioFormat:   1,  // uncompressed
		NumChannels:   1,  // mono
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: pcmLen,
	}
	h.ChunkSize = 36 + h.Subchunk2Size
	return h
}

// EncodeWAV writes samples to w as a mono 16-bit PCM WAV stream. Samples are
// clipped to [-1, 1] before quantization.
func EncodeWAV(w io.Writer, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	header := newWAVHeader(sampleRate, uint32(len(samples)*2))
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}

	pcm := make([]int16, len(samples))
	for i, v := range quantize(samples) {
		pcm[i] = int16(v)
	}
	return binary.Write(w, binary.LittleEndian, pcm)
}

// EncodeWAVBase64 encodes samples as an in-memory WAV stream and returns it
// base64-encoded. No filesystem interaction.
func EncodeWAVBase64(samples []float32, sampleRate int) (string, error) {
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, samples, sampleRate); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// WriteWAVFile resolves path, creates missing parent directories and writes a
// PCM WAV file there. It returns the absolute path written.
func WriteWAVFile(path string, samples []float32, sampleRate int) (string, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return "", fmt.Errorf("failed creating audio directory: %w", err)
	}

	f, err := os.Create(resolved)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           quantize(samples),
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return resolved, nil
}

// quantize clips samples to [-1, 1] and scales them to int16 range.
func quantize(samples []float32) []int {
	pcm := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm[i] = int(s * math.MaxInt16)
	}
	return pcm
}

// ResolvePath expands a leading ~ and makes the path absolute.
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

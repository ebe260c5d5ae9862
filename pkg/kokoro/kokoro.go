// Package kokoro bridges to the Kokoro model runtime. The neural network and
// its weights live in an external runner process; this package only spawns it,
// performs the ready handshake and exchanges synthesis requests over stdio.
package kokoro

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// SampleRate is the fixed output rate of the Kokoro vocoder.
	SampleRate = 24000

	// DefaultRepoID names the pretrained weights repository every pipeline
	// is initialized from.
	DefaultRepoID = "hexgrad/Kokoro-82M"

	// DefaultCommand is the runner binary looked up on PATH when no
	// explicit command is configured.
	DefaultCommand = "kokoro-runner"
)

// Config describes how to start a runner process.
type Config struct {
	// Command is the runner executable. Empty means DefaultCommand.
	Command string
	// RepoID overrides the weights repository. Empty means DefaultRepoID.
	RepoID string
}

type handshake struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

type runRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

type runResponse struct {
	// Segments carries one base64-encoded little-endian float32 PCM buffer
	// per internally chunked sentence or phrase.
	Segments []string `json:"segments"`
	Error    string   `json:"error,omitempty"`
}

// Pipeline is a live runner process bound to one language and one device.
type Pipeline struct {
	langCode string
	device   string

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// New spawns a runner for (langCode, device) and waits for its ready line.
// Initialization failures in the runner (missing weights, accelerator setup
// errors) surface here, before the pipeline is handed out.
func New(ctx context.Context, cfg Config, langCode, device string) (*Pipeline, error) {
	command := cfg.Command
	if command == "" {
		command = DefaultCommand
	}
	repoID := cfg.RepoID
	if repoID == "" {
		repoID = DefaultRepoID
	}

	cmd := exec.CommandContext(ctx, command,
		"--lang", langCode,
		"--device", device,
		"--repo", repoID,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", command, err)
	}

	p := &Pipeline{
		langCode: langCode,
		device:   device,
		cmd:      cmd,
		stdin:    stdin,
		stdout:   bufio.NewReader(stdoutPipe),
	}

	var hs handshake
	if err := p.readLine(&hs); err != nil {
		p.kill()
		return nil, fmt.Errorf("runner handshake: %w", err)
	}
	if !hs.Ready {
		p.kill()
		if hs.Error != "" {
			return nil, fmt.Errorf("runner refused to start: %s", hs.Error)
		}
		return nil, fmt.Errorf("runner did not report ready")
	}

	log.Debug().Str("lang", langCode).Str("device", device).Str("repo", repoID).Msg("runner ready")
	return p, nil
}

// Run sends one synthesis request and decodes the returned segments.
func (p *Pipeline) Run(ctx context.Context, text, voice string, speed float64) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := json.Marshal(runRequest{Text: text, Voice: voice, Speed: speed})
	if err != nil {
		return nil, err
	}
	if _, err := p.stdin.Write(append(req, '\n')); err != nil {
		return nil, fmt.Errorf("writing to runner: %w", err)
	}

	var resp runResponse
	if err := p.readLine(&resp); err != nil {
		return nil, fmt.Errorf("reading from runner: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("runner: %s", resp.Error)
	}

	segments := make([][]float32, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		samples, err := DecodeSegment(s)
		if err != nil {
			return nil, err
		}
		segments = append(segments, samples)
	}
	return segments, nil
}

// Close shuts the runner down by closing its stdin and reaping the process.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin != nil {
		p.stdin.Close()
		p.stdin = nil
	}
	if p.cmd == nil {
		return nil
	}
	err := p.cmd.Wait()
	p.cmd = nil
	return err
}

func (p *Pipeline) readLine(v any) error {
	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		return err
	}
	return json.Unmarshal(line, v)
}

func (p *Pipeline) kill() {
	p.stdin.Close()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd.Wait()
}

// DecodeSegment turns a base64 little-endian float32 buffer into samples.
func DecodeSegment(s string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding segment: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("segment length %d is not float32-aligned", len(raw))
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

// EncodeSegment is the inverse of the runner's segment encoding. It exists for
// tests and for tooling that fakes a runner.
func EncodeSegment(samples []float32) string {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

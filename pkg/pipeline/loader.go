// Package pipeline keeps initialized synthesis pipelines alive for the
// process lifetime so expensive model initialization happens at most once per
// (language, device) pair.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Pipeline is an initialized handle bound to one language and one compute
// device, able to turn text into a sequence of audio sample segments.
type Pipeline interface {
	// Run synthesizes text and returns the emitted segments in order. Each
	// segment is mono float32 PCM at the pipeline's fixed sample rate.
	Run(ctx context.Context, text, voice string, speed float64) ([][]float32, error)
	Close() error
}

// Constructor builds a pipeline bound to a language code and a resolved
// device. It is invoked under the loader lock, once per cache key.
type Constructor func(ctx context.Context, langCode, device string) (Pipeline, error)

type key struct {
	langCode string
	device   string
}

// Loader is a process-wide cache of pipelines keyed by (language, device).
// Entries are created lazily and never evicted.
type Loader struct {
	mu        sync.Mutex
	pipelines map[key]Pipeline
	construct Constructor
}

func NewLoader(construct Constructor) *Loader {
	return &Loader{
		pipelines: make(map[key]Pipeline),
		construct: construct,
	}
}

// Load returns the cached pipeline for (langCode, device), constructing and
// caching it on first use. The lock is held across construction so concurrent
// callers cannot initialize the same key twice.
func (l *Loader) Load(ctx context.Context, langCode, device string) (Pipeline, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{langCode: langCode, device: device}
	if p, ok := l.pipelines[k]; ok {
		log.Debug().Str("lang", langCode).Str("device", device).Msg("pipeline already loaded in memory")
		return p, nil
	}

	log.Debug().Str("lang", langCode).Str("device", device).Msg("initializing pipeline")
	p, err := l.construct(ctx, langCode, device)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("constructor didn't return a pipeline")
	}

	l.pipelines[k] = p
	return p, nil
}

// Loaded reports whether a pipeline exists for the given key.
func (l *Loader) Loaded(langCode, device string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pipelines[key{langCode: langCode, device: device}]
	return ok
}

// Len returns the number of cached pipelines.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pipelines)
}

// Shutdown closes every cached pipeline and empties the cache. The first
// close error is returned, but all pipelines are closed regardless.
func (l *Loader) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var first error
	for k, p := range l.pipelines {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
		delete(l.pipelines, k)
	}
	return first
}

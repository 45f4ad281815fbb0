package assets

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/pyramid-scene/internal/engine/texture"
	"github.com/Faultbox/pyramid-scene/internal/logger"
)

// Kind identifies what a Result carries.
type Kind int

const (
	KindEnvironment Kind = iota
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindModel:
		return "model"
	default:
		return "unknown"
	}
}

// Result is one finished load.
type Result struct {
	Kind        Kind
	Name        string
	Environment *texture.HDR
	Model       *Model
	Err         error
}

// Loader decodes assets on a bounded worker pool and reports results over
// a channel for the render thread to apply.
type Loader struct {
	manager *Manager
	pool    pond.Pool
	ctx     context.Context
	cancel  context.CancelFunc
	results chan Result
	log     *zap.Logger
}

// NewLoader creates a loader with the given number of workers (at least 1).
func NewLoader(m *Manager, workers int) *Loader {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		manager: m,
		pool:    pond.NewPool(workers, pond.WithContext(ctx)),
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan Result, 8),
		log:     logger.Named("assets"),
	}
}

// Results delivers finished loads.
func (l *Loader) Results() <-chan Result {
	return l.results
}

// LoadEnvironment queues a panorama load.
func (l *Loader) LoadEnvironment(name string) pond.Task {
	return l.pool.Submit(func() {
		start := time.Now()
		env, err := l.manager.LoadEnvironment(name)
		if err == nil {
			l.log.Info("environment loaded",
				zap.String("name", name),
				zap.Int("width", env.Width),
				zap.Int("height", env.Height),
				zap.Duration("took", time.Since(start)))
		}
		l.deliver(Result{Kind: KindEnvironment, Name: name, Environment: env, Err: err})
	})
}

// LoadModel queues a glTF load.
func (l *Loader) LoadModel(name string) pond.Task {
	return l.pool.Submit(func() {
		start := time.Now()
		model, err := l.manager.LoadModel(name)
		if err == nil {
			l.log.Info("model loaded",
				zap.String("name", name),
				zap.Int("meshes", len(model.Root.Meshes())),
				zap.Int("clips", len(model.Clips)),
				zap.Duration("took", time.Since(start)))
		}
		l.deliver(Result{Kind: KindModel, Name: name, Model: model, Err: err})
	})
}

func (l *Loader) deliver(r Result) {
	select {
	case l.results <- r:
	case <-l.ctx.Done():
	}
}

// Close cancels queued loads and waits for running ones.
func (l *Loader) Close() {
	l.cancel()
	l.pool.StopAndWait()
}

package forecast

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"CoinScope/internal/domain/service"
	applogger "CoinScope/pkg/logger"
)

// LoadFunc produces a model; it is called at most once successfully per provider.
type LoadFunc func(ctx context.Context) (service.Model, error)

type loadedModel struct {
	m service.Model
}

// LazyProvider loads the model on first use and shares it afterwards.
// Concurrent first callers share a single load but each one stops waiting when
// its own context ends. A failed load is not remembered, so the next caller retries.
type LazyProvider struct {
	load  LoadFunc
	model atomic.Pointer[loadedModel]
	group singleflight.Group
	l     *applogger.Logger
}

var _ service.ModelProvider = (*LazyProvider)(nil)

func NewLazyProvider(load LoadFunc, l *applogger.Logger) *LazyProvider {
	if l == nil {
		l = applogger.Nop()
	}
	return &LazyProvider{load: load, l: l}
}

// NewFileProvider lazily loads a native artifact from path.
func NewFileProvider(path string, l *applogger.Logger, opts ...LoadOption) *LazyProvider {
	return NewLazyProvider(func(ctx context.Context) (service.Model, error) {
		return LoadModel(path, opts...)
	}, l)
}

// NewStaticProvider wraps an already built model.
func NewStaticProvider(m service.Model) *LazyProvider {
	p := &LazyProvider{l: applogger.Nop()}
	p.model.Store(&loadedModel{m: m})
	return p
}

func (p *LazyProvider) Model(ctx context.Context) (service.Model, error) {
	if lm := p.model.Load(); lm != nil {
		return lm.m, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The load outlives any single waiter, so it runs detached from ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan("model", func() (interface{}, error) {
		if lm := p.model.Load(); lm != nil {
			return lm.m, nil
		}
		return p.loadAndStore(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(service.Model), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *LazyProvider) loadAndStore(ctx context.Context) (service.Model, error) {
	start := time.Now()
	m, err := p.load(ctx)
	if err != nil {
		p.l.Error("model load failed", applogger.Error(err), applogger.Duration("duration_ms", time.Since(start)))
		return nil, err
	}
	p.model.Store(&loadedModel{m: m})
	p.l.Info("model loaded",
		applogger.Int("lookback", m.Lookback()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return m, nil
}

func (p *LazyProvider) Loaded() bool {
	return p.model.Load() != nil
}

package mocks

import (
	"context"
	"pms/infras/otel"
	"sync"
)

// Otel is a no-op tracer that keeps the span names and errors it saw so tests
// can assert on what a method traced.
type Otel struct {
	mu     sync.Mutex
	spans  []string
	errors []error
}

// NewScope implements otel.Otel.
func (o *Otel) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	o.mu.Lock()
	o.spans = append(o.spans, spanName)
	o.mu.Unlock()

	return ctx, &scopeImpl{parent: o}
}

// Shutdown implements otel.Otel.
func (o *Otel) Shutdown(_ context.Context) error {
	return nil
}

func (o *Otel) Spans() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]string(nil), o.spans...)
}

func (o *Otel) Errors() []error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]error(nil), o.errors...)
}

func (o *Otel) record(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.errors = append(o.errors, err)
}

func NewOtel() *Otel {
	return &Otel{}
}

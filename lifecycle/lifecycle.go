/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package lifecycle

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/aserve/asgi"
	libctx "github.com/sabouaram/aserve/context"
	"github.com/sabouaram/aserve/metrics"
)

// Lifecycle runs one application's lifespan scope for the lifetime of a
// worker process. Call OnStartup once before the worker starts accepting
// connections, and OnShutdown once after it stops.
type Lifecycle struct {
	app   asgi.Application
	state libctx.Config[string]
	log   *logrus.Entry

	events  chan asgi.InboundMessage
	startup *signal
	shut    *signal

	mu    sync.Mutex
	phase State
}

// New builds a Lifecycle bound to app, sharing state with every HTTPScope
// the worker will later construct.
func New(app asgi.Application, state libctx.Config[string], log *logrus.Entry) *Lifecycle {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Lifecycle{
		app:     app,
		state:   state,
		log:     log,
		events:  make(chan asgi.InboundMessage, 1),
		startup: newSignal("startup"),
		shut:    newSignal("shutdown"),
		phase:   Idle,
	}
}

// State returns the current point in the lifespan state machine.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

func (l *Lifecycle) setState(s State) {
	l.mu.Lock()
	l.phase = s
	l.mu.Unlock()
}

// OnStartup enqueues the startup event, launches the application's
// lifespan scope in the background, and blocks until the application acknowledges startup (successfully or
// not — a failed startup is logged but does not propagate, matching this
// server's intentionally permissive crash policy).
func (l *Lifecycle) OnStartup(ctx context.Context) {
	l.setState(StartingUp)
	l.events <- asgi.LifespanStartupMessage{}

	go l.run(ctx)

	<-l.startup.Signaled()
	if l.State() != Errored {
		l.setState(Serving)
	}
}

// OnShutdown enqueues the shutdown event and blocks until the
// application acknowledges shutdown.
func (l *Lifecycle) OnShutdown(_ context.Context) {
	l.setState(ShuttingDown)
	l.events <- asgi.LifespanShutdownMessage{}

	<-l.shut.Signaled()
	if l.State() != Errored {
		l.setState(Done)
	}
}

// run drives the application's Handle call under the lifespan scope. It
// always signals both latches in its deferred cleanup so a panicking or
// erroring application can never leave OnStartup/OnShutdown blocked
// forever — the same unconditional finally the reference lifecycle uses.
func (l *Lifecycle) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("recovered", r).Error("application panicked during lifespan scope")
			l.setState(Errored)
		}
		l.startup.Signal()
		l.shut.Signal()
	}()

	scope := asgi.NewLifespanScope(l.state)
	if err := l.app.Handle(ctx, scope, l.receive, l.send); err != nil {
		l.log.WithError(err).Error("application returned an error during lifespan scope")
		l.setState(Errored)
	}
}

func (l *Lifecycle) receive(ctx context.Context) (asgi.InboundMessage, error) {
	select {
	case msg := <-l.events:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Lifecycle) send(_ context.Context, msg asgi.OutboundMessage) error {
	switch m := msg.(type) {
	case asgi.LifespanStartupCompleteMessage:
		l.log.Info("application startup has completed successfully")
		l.startup.Signal()
	case asgi.LifespanStartupFailedMessage:
		l.log.WithField("message", m.Message).Warn("application startup has failed")
		metrics.LifespanFailuresTotal.WithLabelValues("startup").Inc()
		l.startup.Signal()
	case asgi.LifespanShutdownCompleteMessage:
		l.log.Info("application shutdown has completed successfully")
		l.shut.Signal()
	case asgi.LifespanShutdownFailedMessage:
		l.log.WithField("message", m.Message).Warn("application shutdown has failed")
		metrics.LifespanFailuresTotal.WithLabelValues("shutdown").Inc()
		l.shut.Signal()
	default:
		l.log.Warnf("unhandled lifespan message type: %T", msg)
	}
	return nil
}

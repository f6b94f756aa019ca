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

// Package worker owns the per-process event loop: one shared-port
// listener, a lifespan scope that gates when it starts and stops
// accepting connections, and one cycle per accepted connection.
package worker

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/sabouaram/aserve/asgi"
	"github.com/sabouaram/aserve/cycle"
	libctx "github.com/sabouaram/aserve/context"
	liberr "github.com/sabouaram/aserve/errors"
	"github.com/sabouaram/aserve/lifecycle"
	"github.com/sabouaram/aserve/metrics"
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgWorker, messages)
}

const (
	ErrListen liberr.CodeError = liberr.MinPkgWorker + iota
)

func messages(code liberr.CodeError) string {
	switch code {
	case ErrListen:
		return "failed to open the shared-port listener"
	default:
		return liberr.NullMessage
	}
}

// Server is one worker process's event loop. Each sibling worker spawned
// by the manager constructs and runs its own Server against the same
// host:port.
type Server struct {
	App  asgi.Application
	Host string
	Port int

	log    *logrus.Entry
	access *logrus.Entry

	shouldExit *signalLatch
}

// New builds a worker Server. log and access may be nil, in which case
// the standard logrus logger is used for both.
func New(app asgi.Application, host string, port int, log, access *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if access == nil {
		access = logrus.NewEntry(logrus.StandardLogger()).WithField("logger", "access")
	}

	return &Server{
		App:        app,
		Host:       host,
		Port:       port,
		log:        log,
		access:     access,
		shouldExit: newSignalLatch(),
	}
}

// Run opens the shared-port listener, drives the application's lifespan
// scope around it, and serves connections until SIGINT/SIGTERM is
// received or ctx is cancelled. It matches the reference Server.serve
// sequencing: bind, startup, start accepting, wait for interrupt,
// shutdown.
func (s *Server) Run(ctx context.Context) error {
	pid := os.Getpid()
	s.log = s.log.WithField("pid", pid)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			s.log.WithField("signal", sig.String()).Info("received signal on worker")
			s.shouldExit.Signal()
		case <-ctx.Done():
			s.shouldExit.Signal()
		}
	}()

	ln, err := listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.Host, s.Port))
	if err != nil {
		return liberr.New(ErrListen.Uint16(), ErrListen.Message(), err)
	}
	defer func() { _ = ln.Close() }()

	state := libctx.NewConfig[string](nil)
	lc := lifecycle.New(s.App, state, s.log)

	lc.OnStartup(ctx)
	defer lc.OnShutdown(ctx)

	metrics.WorkersAlive.Inc()
	defer metrics.WorkersAlive.Dec()

	s.log.Info("worker accepting connections")
	s.acceptLoop(ctx, ln, state)

	s.log.Info("worker draining and shutting down")
	return nil
}

// acceptLoop accepts connections in the foreground goroutine and hands
// each one to a new cycle.Cycle in its own goroutine, until shouldExit is
// signaled. Accept() is interrupted by closing the listener once the exit
// signal fires.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, state libctx.Config[string]) {
	done := make(chan struct{})
	go func() {
		<-s.shouldExit.Signaled()
		_ = ln.Close()
		close(done)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-done:
				return
			default:
				s.log.WithError(err).Warn("accept failed")
				return
			}
		}

		go func(c net.Conn) {
			cyc := cycle.New(s.App, c, state, s.access)
			if cerr := cyc.Complete(ctx); cerr != nil {
				s.log.WithError(cerr).Warn("cycle completed with error")
			}
			metrics.CyclesTotal.Inc()
		}(conn)
	}
}

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

// Package manager owns the root process: it spawns a fresh worker
// process per configured worker count, waits for an interrupt, and then
// terminates and reaps every worker it spawned. Workers are fresh
// `os/exec` children re-invoking this same binary, the Go analogue of
// Python's multiprocessing.get_context("spawn") (no fork(2) + COW memory
// sharing, every worker starts its import/registration side effects from
// scratch).
package manager

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	libatm "github.com/sabouaram/aserve/atomic"
	liberr "github.com/sabouaram/aserve/errors"
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgManager, messages)
}

const (
	ErrSpawn liberr.CodeError = liberr.MinPkgManager + iota
)

func messages(code liberr.CodeError) string {
	switch code {
	case ErrSpawn:
		return "failed to spawn a worker process"
	default:
		return liberr.NullMessage
	}
}

// WorkerEnvApp, WorkerEnvHost and WorkerEnvPort name the environment variables the
// manager sets on every spawned worker and that cmd/aserve reads back to
// decide it is running as a worker rather than as the manager itself.
const (
	WorkerEnvApp  = "ASERVE_WORKER_APP"
	WorkerEnvHost = "ASERVE_WORKER_HOST"
	WorkerEnvPort = "ASERVE_WORKER_PORT"
)

// Config describes the cohort of workers the manager spawns.
type Config struct {
	AppRef  string
	Host    string
	Port    int
	Workers int
}

// worker is the manager's handle on one spawned sibling process. alive is
// flipped to false by the monitor goroutine started in spawnWorker as soon
// as Wait returns, so terminateAll can skip signalling a process that
// already exited on its own without racing a second concurrent Wait call.
type worker struct {
	cmd   *exec.Cmd
	id    int
	alive libatm.Value[bool]
	done  chan error
}

func newWorker(cmd *exec.Cmd, id int) *worker {
	return &worker{cmd: cmd, id: id, alive: libatm.NewValue[bool](), done: make(chan error, 1)}
}

// Manager owns the lifetime of a worker cohort.
type Manager struct {
	cfg Config
	log *logrus.Entry

	procs []*worker
}

// New builds a Manager for cfg. log may be nil, in which case the
// standard logrus logger is used.
func New(cfg Config, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Manager{cfg: cfg, log: log}
}

// Run spawns the configured number of worker processes, blocks until
// SIGINT/SIGTERM is received or ctx is cancelled, then terminates and
// joins every worker, aggregating any errors encountered along the way.
func (m *Manager) Run(ctx context.Context) error {
	m.log = m.log.WithField("pid", os.Getpid())
	m.log.Info("starting manager process")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	self, err := os.Executable()
	if err != nil {
		return liberr.New(ErrSpawn.Uint16(), ErrSpawn.Message(), err)
	}

	for i := 0; i < m.cfg.Workers; i++ {
		if err = m.spawnWorker(self, i); err != nil {
			return err
		}
	}

	select {
	case sig := <-sigCh:
		m.log.WithField("signal", sig.String()).Info("received interrupt")
	case <-ctx.Done():
		m.log.Info("context cancelled")
	}

	err = m.terminateAll()
	m.log.Info("closing manager process")
	return err
}

func (m *Manager) spawnWorker(self string, idx int) error {
	cmd := exec.Command(self, "serve", "--worker")
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%s", WorkerEnvApp, m.cfg.AppRef),
		fmt.Sprintf("%s=%s", WorkerEnvHost, m.cfg.Host),
		fmt.Sprintf("%s=%d", WorkerEnvPort, m.cfg.Port),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return liberr.New(ErrSpawn.Uint16(), ErrSpawn.Message(), err)
	}

	w := newWorker(cmd, idx)
	w.alive.Store(true)

	go func() {
		err := cmd.Wait()
		w.alive.Store(false)
		w.done <- err
	}()

	m.log.WithFields(logrus.Fields{"worker_index": idx, "worker_pid": cmd.Process.Pid}).
		Info("spawned worker process")
	m.procs = append(m.procs, w)
	return nil
}

// terminateAll signals every worker still marked alive and waits for each
// monitor goroutine to observe its exit, aggregating any non-nil Wait
// error. Per this server's crash policy, terminateAll never restarts a
// worker that already exited on its own before shutdown was requested —
// alive.Load() distinguishes that case from one still running.
func (m *Manager) terminateAll() error {
	var result *multierror.Error

	for _, w := range m.procs {
		if !w.alive.Load() {
			continue
		}
		if err := w.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, w := range m.procs {
		if err := <-w.done; err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

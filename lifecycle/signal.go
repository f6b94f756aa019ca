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

import "sync"

// signal is a one-shot, broadcast latch: Signal closes its channel
// exactly once, and any number of goroutines can block on Signaled (or
// poll it with a select) until that happens. It replaces the polled
// boolean flag the reference design uses for startup/shutdown
// completion with something that cannot be observed in a half-set state.
type signal struct {
	name string
	once sync.Once
	ch   chan struct{}
}

func newSignal(name string) *signal {
	return &signal{name: name, ch: make(chan struct{})}
}

// Signal closes the latch. Safe to call more than once or concurrently;
// only the first call has any effect.
func (s *signal) Signal() {
	s.once.Do(func() { close(s.ch) })
}

// Signaled returns the channel that closes when Signal has been called.
func (s *signal) Signaled() <-chan struct{} {
	return s.ch
}

// Name identifies the latch in logs.
func (s *signal) Name() string {
	return s.name
}

// IsSignaled reports whether Signal has already been called, without
// blocking.
func (s *signal) IsSignaled() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

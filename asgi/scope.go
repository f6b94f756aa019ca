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

package asgi

import (
	libctx "github.com/sabouaram/aserve/context"
)

// ScopeType distinguishes an HTTP connection scope from a process
// lifespan scope, the two invocation shapes an Application must handle.
type ScopeType string

const (
	ScopeHTTP     ScopeType = "http"
	ScopeLifespan ScopeType = "lifespan"
)

// Scope is the read-only invocation context an Application receives. It
// carries a State map that is shared by reference across every scope
// built within one worker process, so an Application can stash a
// connection pool or cache during its lifespan scope and read it back
// during every HTTP scope that follows.
type Scope interface {
	Type() ScopeType
	State() libctx.Config[string]
}

// HTTPScope describes a single inbound HTTP/1.1 connection as parsed by
// the cycle off the raw socket buffer.
type HTTPScope struct {
	Method      string
	Path        string
	QueryString string
	Headers     [][2]string
	ClientAddr  string

	state libctx.Config[string]
}

// NewHTTPScope builds an HTTPScope that shares the given state map by
// reference, per the protocol's state-sharing invariant.
func NewHTTPScope(method, path, query string, headers [][2]string, clientAddr string, state libctx.Config[string]) *HTTPScope {
	return &HTTPScope{
		Method:      method,
		Path:        path,
		QueryString: query,
		Headers:     headers,
		ClientAddr:  clientAddr,
		state:       state,
	}
}

func (s *HTTPScope) Type() ScopeType             { return ScopeHTTP }
func (s *HTTPScope) State() libctx.Config[string] { return s.state }

// Header returns the first header value matching name, case-insensitively,
// or "" if absent.
func (s *HTTPScope) Header(name string) string {
	for _, h := range s.Headers {
		if equalFoldASCII(h[0], name) {
			return h[1]
		}
	}
	return ""
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// LifespanScope is delivered exactly once per worker process, wrapping
// the same State map that every subsequent HTTPScope will see.
type LifespanScope struct {
	state libctx.Config[string]
}

// NewLifespanScope builds a LifespanScope bound to state.
func NewLifespanScope(state libctx.Config[string]) *LifespanScope {
	return &LifespanScope{state: state}
}

func (s *LifespanScope) Type() ScopeType             { return ScopeLifespan }
func (s *LifespanScope) State() libctx.Config[string] { return s.state }

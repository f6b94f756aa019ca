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

// Package registry resolves an application reference string to a
// asgi.Application, the compile-time stand-in for the dynamic
// "module:attribute" import the reference design relies on. An
// application registers itself from an init func, the same idiom
// database/sql drivers use to register themselves with sql.Register.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sabouaram/aserve/asgi"
	liberr "github.com/sabouaram/aserve/errors"
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgRegistry, messages)
}

const (
	ErrAlreadyRegistered liberr.CodeError = liberr.MinPkgRegistry + iota
	ErrInvalidReference
	ErrNotFound
)

func messages(code liberr.CodeError) string {
	switch code {
	case ErrAlreadyRegistered:
		return "an application is already registered under this name"
	case ErrInvalidReference:
		return "application reference must be of the form 'name' or 'name:variant'"
	case ErrNotFound:
		return "no application registered under this name"
	default:
		return liberr.NullMessage
	}
}

var (
	mu   sync.RWMutex
	apps = make(map[string]asgi.Application)
)

// Register binds name to app. It panics on a duplicate name, mirroring
// database/sql.Register, since a colliding registration is always a
// programming error caught at process startup, never a runtime
// condition to recover from.
func Register(name string, app asgi.Application) {
	mu.Lock()
	defer mu.Unlock()

	if app == nil {
		panic("registry: Register application is nil")
	}

	if _, dup := apps[name]; dup {
		panic(fmt.Sprintf("registry: Register called twice for application %q", name))
	}

	apps[name] = app
}

// Resolve looks up the application referenced by ref. ref is either a
// bare registered name ("helloapp") or "name:variant" when a single
// registration wants to expose more than one named variant; only the
// "name" portion is used to look up the registration, the suffix is
// passed through unused today but kept to match the two-part reference
// shape the wire design names.
func Resolve(ref string) (asgi.Application, error) {
	name := ref
	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		name = ref[:idx]
	}

	if name == "" {
		return nil, liberr.New(ErrInvalidReference.Uint16(), ErrInvalidReference.Message()+": "+ref)
	}

	mu.RLock()
	defer mu.RUnlock()

	if app, ok := apps[name]; ok {
		return app, nil
	}

	return nil, liberr.New(ErrNotFound.Uint16(), ErrNotFound.Message()+": "+name)
}

// Names returns the sorted list of currently registered application
// names, used by the CLI to print available choices on a resolution
// failure.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	res := make([]string, 0, len(apps))
	for n := range apps {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

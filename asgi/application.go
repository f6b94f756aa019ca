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

import "context"

// Receive is handed to an Application so it can pull the next inbound
// message for the scope it is running under.
type Receive func(ctx context.Context) (InboundMessage, error)

// Send is handed to an Application so it can push an outbound message for
// the scope it is running under.
type Send func(ctx context.Context, msg OutboundMessage) error

// Application is the single entry point every served program implements,
// the Go-native replacement for the dynamically-imported "module:attr"
// callable of the reference design (see the registry package for how a
// Application is looked up by name instead of imported at runtime).
//
// Handle is invoked once per HTTPScope and once per LifespanScope. It
// must return only after it has finished using recv/send: the cycle or
// lifecycle driving it tears down the scope's channels as soon as Handle
// returns.
type Application interface {
	Handle(ctx context.Context, scope Scope, recv Receive, send Send) error
}

// ApplicationFunc adapts a plain function to the Application interface,
// the same convenience shape http.HandlerFunc gives net/http.Handler.
type ApplicationFunc func(ctx context.Context, scope Scope, recv Receive, send Send) error

func (f ApplicationFunc) Handle(ctx context.Context, scope Scope, recv Receive, send Send) error {
	return f(ctx, scope, recv, send)
}

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

// Package cycle drives one RequestResponseCycle: reading a single buffer
// off an accepted connection, parsing it into an HTTP scope, invoking the
// application under that scope, and draining its response back onto the
// wire.
package cycle

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sabouaram/aserve/asgi"
	libctx "github.com/sabouaram/aserve/context"
	liberr "github.com/sabouaram/aserve/errors"
)

// errorStatus is the status line written back to the client when an
// application errors out before it ever called Send with a response
// start, so the connection does not simply go silent.
const errorStatus = 500

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgCycle, messages)
}

const (
	ErrRead liberr.CodeError = liberr.MinPkgCycle + iota
	ErrApplication
)

func messages(code liberr.CodeError) string {
	switch code {
	case ErrRead:
		return "failed reading request bytes off the connection"
	case ErrApplication:
		return "application returned an error while handling the cycle"
	default:
		return liberr.NullMessage
	}
}

// readLimit is the single read(2) size ceiling inherited from the
// reference implementation. Requests whose headers+body exceed this in
// one read are truncated rather than reassembled across multiple reads.
const readLimit = 10000

// Cycle owns one accepted connection for its entire request/response
// lifetime. It is not reused across connections.
type Cycle struct {
	app    asgi.Application
	conn   net.Conn
	state  libctx.Config[string]
	access *logrus.Entry

	scope   *asgi.HTTPScope
	body    []byte
	id      string
	started bool
}

// New builds a Cycle for one accepted connection. state is the worker's
// shared state map, handed to every HTTPScope the worker ever builds.
func New(app asgi.Application, conn net.Conn, state libctx.Config[string], access *logrus.Entry) *Cycle {
	return &Cycle{
		app:    app,
		conn:   conn,
		state:  state,
		access: access,
		id:     uuid.NewString(),
	}
}

// Complete reads one buffer off the connection, parses it into an
// HTTPScope, invokes the application, and leaves response writing to
// send (called by the application through the Send func it is given).
// The connection is always closed before Complete returns.
func (c *Cycle) Complete(ctx context.Context) error {
	defer func() { _ = c.conn.Close() }()

	buf := make([]byte, readLimit)
	n, err := c.conn.Read(buf)
	if err != nil && n == 0 {
		return liberr.New(ErrRead.Uint16(), ErrRead.Message(), err)
	}

	req := parseRequest(buf[:n])
	c.body = req.Body
	c.scope = asgi.NewHTTPScope(req.Method, req.Path, req.QueryString, req.Headers, c.conn.RemoteAddr().String(), c.state)

	if err = c.app.Handle(ctx, c.scope, c.receive, c.send); err != nil {
		logrus.WithFields(logrus.Fields{"cycle_id": c.id, "method": req.Method, "path": req.Path}).
			WithError(err).Error("application returned an error handling cycle")

		if !c.started {
			c.writeErrorResponse(err)
		}

		return liberr.New(ErrApplication.Uint16(), ErrApplication.Message(), err)
	}

	return nil
}

// writeErrorResponse renders cause as the JSON body liberr.DefaultReturn
// produces and writes it behind a 500 status line, the fallback response
// for a cycle whose application errored before Send ever wrote a
// response start.
func (c *Cycle) writeErrorResponse(cause error) {
	ret := liberr.NewDefaultReturn()
	ret.SetError(int(ErrApplication.Uint16()), cause.Error(), "", 0)
	body := ret.JSON()

	head := fmt.Sprintf("HTTP/1.1 %d OK\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", errorStatus, len(body))
	if _, werr := c.conn.Write([]byte(head)); werr != nil {
		return
	}
	_, _ = c.conn.Write(body)
}

func (c *Cycle) receive(_ context.Context) (asgi.InboundMessage, error) {
	return asgi.HTTPRequestMessage{Body: c.body, More: false}, nil
}

func (c *Cycle) send(_ context.Context, msg asgi.OutboundMessage) error {
	switch m := msg.(type) {
	case asgi.HTTPResponseStartMessage:
		return c.sendStart(m)
	case asgi.HTTPResponseBodyMessage:
		return c.sendBody(m)
	default:
		logrus.WithField("cycle_id", c.id).Warnf("unhandled outbound message type: %T", msg)
		return nil
	}
}

func (c *Cycle) sendStart(m asgi.HTTPResponseStartMessage) error {
	head := fmt.Sprintf("HTTP/1.1 %d OK\r\n", m.Status)
	for _, h := range m.Headers {
		head += fmt.Sprintf("%s: %s\r\n", h[0], h[1])
	}
	head += "\r\n"

	if _, err := c.conn.Write([]byte(head)); err != nil {
		return liberr.New(ErrApplication.Uint16(), "failed writing response head", err)
	}
	c.started = true

	if c.access != nil {
		c.access.WithFields(logrus.Fields{
			"cycle_id": c.id,
			"method":   c.scope.Method,
			"path":     c.scope.Path,
			"status":   m.Status,
		}).Info(fmt.Sprintf("%s %s %d", c.scope.Method, c.scope.Path, m.Status))
	}

	return nil
}

func (c *Cycle) sendBody(m asgi.HTTPResponseBodyMessage) error {
	if len(m.Body) > 0 {
		if _, err := c.conn.Write(m.Body); err != nil {
			return liberr.New(ErrApplication.Uint16(), "failed writing response body", err)
		}
	}
	if !m.More {
		return c.conn.Close()
	}
	return nil
}

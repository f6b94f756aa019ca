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

// Package asgi defines the message protocol that connects a transport
// cycle (HTTP connection or process lifespan) to an Application: the set
// of scopes, inbound/outbound message shapes and the single callable
// interface every application must implement.
package asgi

// MessageType tags the concrete shape carried by an InboundMessage or
// OutboundMessage, mirroring the "type" string field of the wire protocol
// this package is the Go-native stand-in for.
type MessageType string

const (
	MessageHTTPRequest       MessageType = "http.request"
	MessageHTTPResponseStart MessageType = "http.response.start"
	MessageHTTPResponseBody  MessageType = "http.response.body"

	MessageLifespanStartup         MessageType = "lifespan.startup"
	MessageLifespanStartupComplete MessageType = "lifespan.startup.complete"
	MessageLifespanStartupFailed   MessageType = "lifespan.startup.failed"
	MessageLifespanShutdown        MessageType = "lifespan.shutdown"
	MessageLifespanShutdownComplete MessageType = "lifespan.shutdown.complete"
	MessageLifespanShutdownFailed   MessageType = "lifespan.shutdown.failed"
)

// InboundMessage is anything an Application can Receive from its cycle:
// an HTTP request body chunk, or a lifespan startup/shutdown notice.
type InboundMessage interface {
	Kind() MessageType
}

// OutboundMessage is anything an Application can Send to its cycle: an
// HTTP response header block, a body chunk, or a lifespan completion
// notice.
type OutboundMessage interface {
	Kind() MessageType
}

// HTTPRequestMessage carries the request body as read off the wire. Body
// is the entire payload available from the single read this server
// performs per cycle; More is always false since chunked re-reads are not
// supported (see worker/cycle design notes).
type HTTPRequestMessage struct {
	Body []byte
	More bool
}

func (m HTTPRequestMessage) Kind() MessageType { return MessageHTTPRequest }

// HTTPResponseStartMessage carries the status code and header block an
// Application wants written first. Headers preserve the order the
// Application supplied, since HTTP/1.1 header order is observable by
// clients.
type HTTPResponseStartMessage struct {
	Status  int
	Headers [][2]string
}

func (m HTTPResponseStartMessage) Kind() MessageType { return MessageHTTPResponseStart }

// HTTPResponseBodyMessage carries a chunk of response body. When More is
// false the cycle closes the connection after writing Body.
type HTTPResponseBodyMessage struct {
	Body []byte
	More bool
}

func (m HTTPResponseBodyMessage) Kind() MessageType { return MessageHTTPResponseBody }

// LifespanStartupMessage is delivered once per worker process before the
// listener starts accepting connections.
type LifespanStartupMessage struct{}

func (m LifespanStartupMessage) Kind() MessageType { return MessageLifespanStartup }

// LifespanStartupCompleteMessage acknowledges a successful startup.
type LifespanStartupCompleteMessage struct{}

func (m LifespanStartupCompleteMessage) Kind() MessageType { return MessageLifespanStartupComplete }

// LifespanStartupFailedMessage reports a startup failure. The worker logs
// this but, per this server's minimalism, still proceeds to serve.
type LifespanStartupFailedMessage struct {
	Message string
}

func (m LifespanStartupFailedMessage) Kind() MessageType { return MessageLifespanStartupFailed }

// LifespanShutdownMessage is delivered once per worker process after the
// listener has stopped accepting new connections.
type LifespanShutdownMessage struct{}

func (m LifespanShutdownMessage) Kind() MessageType { return MessageLifespanShutdown }

// LifespanShutdownCompleteMessage acknowledges a successful shutdown.
type LifespanShutdownCompleteMessage struct{}

func (m LifespanShutdownCompleteMessage) Kind() MessageType { return MessageLifespanShutdownComplete }

// LifespanShutdownFailedMessage reports a shutdown failure. Logged only;
// the process exits regardless.
type LifespanShutdownFailedMessage struct {
	Message string
}

func (m LifespanShutdownFailedMessage) Kind() MessageType { return MessageLifespanShutdownFailed }

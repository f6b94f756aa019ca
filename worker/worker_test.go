/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package worker_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/aserve/asgi"
	"github.com/sabouaram/aserve/worker"
)

type pingApp struct{}

func (pingApp) Handle(ctx context.Context, scope asgi.Scope, recv asgi.Receive, send asgi.Send) error {
	if scope.Type() != asgi.ScopeHTTP {
		// lifespan scope: acknowledge whichever event arrives and stop.
		for {
			msg, err := recv(ctx)
			if err != nil {
				return err
			}
			switch msg.Kind() {
			case asgi.MessageLifespanStartup:
				if err = send(ctx, asgi.LifespanStartupCompleteMessage{}); err != nil {
					return err
				}
			case asgi.MessageLifespanShutdown:
				return send(ctx, asgi.LifespanShutdownCompleteMessage{})
			}
		}
	}

	if _, err := recv(ctx); err != nil {
		return err
	}
	if err := send(ctx, asgi.HTTPResponseStartMessage{Status: 200}); err != nil {
		return err
	}
	return send(ctx, asgi.HTTPResponseBodyMessage{Body: []byte("pong"), More: false})
}

func freePort() int {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

var _ = Describe("Server", func() {
	It("serves a connection and shuts down cleanly on context cancellation", func() {
		port := freePort()
		srv := worker.New(pingApp{}, "127.0.0.1", port, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		runDone := make(chan error, 1)
		go func() { runDone <- srv.Run(ctx) }()

		var conn net.Conn
		var err error
		Eventually(func() error {
			conn, err = net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
			return err
		}, 2*time.Second, 20*time.Millisecond).Should(Succeed())

		_, err = conn.Write([]byte("GET /ping HTTP/1.1\r\nHost: x\r\n\r\n"))
		Expect(err).ToNot(HaveOccurred())

		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		resp, err := io.ReadAll(conn)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(resp)).To(ContainSubstring("HTTP/1.1 200 OK"))
		Expect(string(resp)).To(ContainSubstring("pong"))

		cancel()
		Eventually(runDone, 2*time.Second).Should(Receive(BeNil()))
	})
})

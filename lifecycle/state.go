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

// Package lifecycle drives the lifespan protocol scope of a worker
// process: it runs the application's startup/shutdown handling as a
// background goroutine, fed by a small message queue, and exposes two
// latches the worker blocks on before it starts, and after it stops,
// accepting connections.
package lifecycle

import "fmt"

// State is a point in the lifespan state machine:
//
//	Idle --OnStartup()--> StartingUp --app acks startup--> Serving
//	Serving --OnShutdown()--> ShuttingDown --app acks shutdown--> Done
//	(any state) --application panic or returned error--> Errored
type State uint8

const (
	Idle State = iota
	StartingUp
	Serving
	ShuttingDown
	Done
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case StartingUp:
		return "StartingUp"
	case Serving:
		return "Serving"
	case ShuttingDown:
		return "ShuttingDown"
	case Done:
		return "Done"
	case Errored:
		return "Errored"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

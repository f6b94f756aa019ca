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

// Package metrics exposes the process-level Prometheus collectors each
// worker process updates as it runs. Registration happens once, on
// package init, against the default registry; every process keeps its
// own counts, and no package in this module serves them over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesTotal counts every completed request/response cycle, across
	// all workers in this process.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aserve",
		Name:      "cycles_total",
		Help:      "Total number of request/response cycles completed by this worker.",
	})

	// WorkersAlive tracks how many worker event loops are currently
	// between startup and shutdown in this process.
	WorkersAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "aserve",
		Name:      "workers_alive",
		Help:      "Number of worker event loops currently serving in this process.",
	})

	// LifespanFailuresTotal counts lifespan startup/shutdown messages
	// that reported failure.
	LifespanFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aserve",
		Name:      "lifespan_failures_total",
		Help:      "Total number of lifespan startup/shutdown failures reported by applications.",
	}, []string{"phase"})
)

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

// Package buildinfo stamps the binary with version metadata set at link
// time via -ldflags, replacing the reference codebase's own version
// package (not carried forward: its implementation depended on other
// packages missing from this lineage).
package buildinfo

import "fmt"

// These are overridden at build time with:
//
//	go build -ldflags "-X github.com/sabouaram/aserve/buildinfo.version=1.2.3 \
//	  -X github.com/sabouaram/aserve/buildinfo.commit=abcdef \
//	  -X github.com/sabouaram/aserve/buildinfo.date=2026-07-31"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Version returns a single-line human-readable build identifier.
func Version() string {
	return fmt.Sprintf("%s (commit=%s, built=%s)", version, commit, date)
}

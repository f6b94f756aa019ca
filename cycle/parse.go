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

package cycle

import (
	"bytes"
)

// parsedRequest is the result of splitting one raw read off the wire into
// its request-line, header and body parts. It intentionally mirrors only
// what a single read can contain: there is no re-read loop to honor a
// Content-Length header that spans more than one TCP segment.
type parsedRequest struct {
	Method      string
	Path        string
	QueryString string
	Headers     [][2]string
	Body        []byte
}

// parseRequest splits raw HTTP/1.1 request bytes the same way the
// reference byte-slicer does: split on "\r\n", take method and
// path?query from the request line, split every following non-empty
// line on ": " for headers (lower-cased keys), and take everything after
// the first blank line as the body.
func parseRequest(raw []byte) parsedRequest {
	lines := bytes.Split(raw, []byte("\r\n"))

	var method, path, query string
	if len(lines) > 0 {
		parts := bytes.SplitN(lines[0], []byte(" "), 3)
		if len(parts) > 0 {
			method = string(parts[0])
		}
		if len(parts) > 1 {
			target := parts[1]
			if i := bytes.IndexByte(target, '?'); i >= 0 {
				path = string(target[:i])
				query = string(target[i+1:])
			} else {
				path = string(target)
			}
		}
	}

	headers := make([][2]string, 0, len(lines))
	for _, line := range lines[minInt(1, len(lines)):] {
		if len(line) == 0 {
			continue
		}
		if i := bytes.Index(line, []byte(": ")); i >= 0 {
			key := bytes.ToLower(line[:i])
			val := line[i+2:]
			headers = append(headers, [2]string{string(key), string(val)})
		}
	}

	var body []byte
	if idx := bytes.Index(raw, []byte("\r\n\r\n")); idx != -1 {
		body = raw[idx+4:]
	} else {
		body = nil
	}

	return parsedRequest{
		Method:      method,
		Path:        path,
		QueryString: query,
		Headers:     headers,
		Body:        body,
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

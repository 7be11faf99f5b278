// ABOUTME: Shared test helpers for decode tests
// ABOUTME: Builds buffered readers over in-memory data
package decode

import (
	"bufio"
	"bytes"
)

func newTestReader(data []byte) *bufio.Reader {
	return bufio.NewReader(bytes.NewReader(data))
}

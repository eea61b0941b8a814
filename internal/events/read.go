package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxLineSize caps a single JSONL line read back from disk.
const maxLineSize = 1 << 20

// Tail reads a JSONL event log and returns the last n events whose kind
// starts with prefix (empty prefix keeps everything). Lines that do not
// decode are skipped. n <= 0 returns every matching event.
func Tail(r io.Reader, n int, prefix string) ([]Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []Event
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if prefix != "" && !strings.HasPrefix(string(e.Kind), prefix) {
			continue
		}
		out = append(out, e)
		if n > 0 && len(out) > n {
			out = out[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read event log: %w", err)
	}
	return out, nil
}

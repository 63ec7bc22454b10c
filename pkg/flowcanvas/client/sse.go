package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/debug"
)

// Frame is one server-sent event: an optional event name and the
// concatenated data payload.
type Frame struct {
	Event string
	Data  string
}

// splitFrames is a bufio.SplitFunc yielding blank-line-delimited
// frames. A trailing partial frame at EOF is emitted as-is.
func splitFrames(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseFrame decodes one frame chunk. Lines starting with "event:"
// set the event name; "data:" lines are trimmed and concatenated.
// Frames with no data are skipped.
func parseFrame(chunk string) (Frame, bool) {
	var f Frame
	var data strings.Builder
	for _, line := range strings.Split(chunk, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			f.Event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}
	f.Data = data.String()
	if f.Data == "" {
		return Frame{}, false
	}
	return f, true
}

// readFrames consumes the response body frame by frame, calling fn
// for each parsed frame in arrival order. Returns the read error that
// ended the stream, or nil on clean EOF.
func readFrames(r io.Reader, fn func(Frame)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	scanner.Split(splitFrames)
	for scanner.Scan() {
		if f, ok := parseFrame(scanner.Text()); ok {
			fn(f)
		}
	}
	return scanner.Err()
}

// decodeEvent parses a frame payload into a run-stream event.
// Payloads that are not valid JSON are passed through as raw text via
// the second return.
func decodeEvent(f Frame) (debug.Event, string, bool) {
	var evt debug.Event
	if err := json.Unmarshal([]byte(f.Data), &evt); err != nil {
		return debug.Event{}, f.Data, false
	}
	return evt, "", true
}

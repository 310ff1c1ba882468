// Streamed response decoding.
//
// Two framings exist in the wild: Ollama streams bare JSON objects one per
// line (NDJSON), while the OpenAI-compatible and MLX-VLM servers use SSE
// framing where payload lines carry a "data: " prefix and the literal
// payload "[DONE]" terminates the stream. The decoder branches on an
// explicit Framing value; it never sniffs.

package backend

import (
	"bufio"
	"io"
	"log/slog"
	"strings"
)

// Framing selects how raw response lines are framed into JSON payloads.
type Framing int

const (
	// FramingNDJSON treats every non-blank line as a complete JSON object.
	FramingNDJSON Framing = iota
	// FramingSSE extracts payloads from "data: "-prefixed lines and honors
	// the [DONE] termination sentinel.
	FramingSSE
)

const (
	ssePrefix      = "data: "
	sseDoneMarker  = "[DONE]"
	maxLineBytes   = 1 << 20
	initLineBuffer = 64 << 10
)

// Frame is one decoded unit from a streamed response body: one SSE payload
// or one NDJSON line, parsed into its wire format.
type Frame interface {
	// Content returns the text fragment this frame carries, if any.
	Content() string
	// Final reports whether this frame signals completion.
	Final() bool
}

// parseFunc parses one raw payload into a wire-format frame.
type parseFunc func(data []byte) (Frame, error)

// decoder turns a byte stream into text chunks plus a final decode state.
// A decoder is owned by exactly one in-flight request; its accumulator and
// line buffer are never shared or reused across requests or retries.
type decoder struct {
	framing Framing
	parse   parseFunc
	logger  *slog.Logger
}

func newDecoder(framing Framing, parse parseFunc, logger *slog.Logger) *decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &decoder{framing: framing, parse: parse, logger: logger}
}

// decodeResult is the terminal state of a decoded stream.
type decodeResult struct {
	text string // concatenation of every delivered chunk, in order
	last Frame  // last successfully parsed frame, nil if none
}

// run reads the stream line by line until a completion signal or EOF.
// Every non-empty text fragment is delivered to onChunk and appended to the
// accumulator before the next line is read. Malformed frames are skipped;
// I/O errors abort the stream and propagate.
func (d *decoder) run(r io.Reader, onChunk func(string)) (*decodeResult, error) {
	var full strings.Builder
	var last Frame

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initLineBuffer), maxLineBytes)

	for scanner.Scan() {
		payload, terminal := d.framePayload(scanner.Text())
		if terminal {
			break
		}
		if payload == "" {
			continue
		}

		frame, err := d.parse([]byte(payload))
		if err != nil {
			// Tolerate transient partial frames some backends emit.
			d.logger.Debug("skipping malformed stream frame", "payload", payload, "error", err)
			continue
		}
		last = frame

		if content := frame.Content(); content != "" {
			if onChunk != nil {
				onChunk(content)
			}
			full.WriteString(content)
		}

		if frame.Final() {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// The stream closing is itself terminal; absence of an explicit
	// completion signal does not make the response incomplete.
	return &decodeResult{text: full.String(), last: last}, nil
}

// framePayload extracts the JSON payload from one raw line, or reports that
// the line terminates the stream.
func (d *decoder) framePayload(line string) (payload string, terminal bool) {
	switch d.framing {
	case FramingSSE:
		if !strings.HasPrefix(line, ssePrefix) {
			return "", false
		}
		data := strings.TrimSpace(line[len(ssePrefix):])
		if data == sseDoneMarker {
			return "", true
		}
		return data, false
	default: // FramingNDJSON
		return strings.TrimSpace(line), false
	}
}

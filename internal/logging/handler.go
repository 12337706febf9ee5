package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// MaxLineLength is the maximum length of a single line before truncation.
	MaxLineLength = 4096

	// MaxBufferedLines is the number of most recent lines kept per helper.
	MaxBufferedLines = 50
)

// StderrHandler captures the stderr stream of one helper process.
//
// It is an io.Writer so os/exec can drain the pipe into it while the
// process runs. Complete lines are logged at debug level and the most recent
// ones are kept for the per-item diagnostic.
type StderrHandler struct {
	item   string
	logger *slog.Logger

	mu      sync.Mutex
	partial []byte

	// Circular buffer for recent lines
	buffer  []string
	bufIdx  int
	total   int
	dropped int
}

// NewStderrHandler creates a new stderr handler for one item.
// A nil logger disables per-line logging.
func NewStderrHandler(item string, logger *slog.Logger) *StderrHandler {
	return &StderrHandler{
		item:   item,
		logger: logger,
		buffer: make([]string, MaxBufferedLines),
	}
}

// Write splits p into lines. A trailing partial line is held until the next
// Write or Flush.
func (h *StderrHandler) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data := p
	if len(h.partial) > 0 {
		data = append(h.partial, p...)
		h.partial = nil
	}

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		h.handleLine(string(data[:i]))
		data = data[i+1:]
	}

	if len(data) > 0 {
		if len(data) > MaxLineLength {
			h.handleLine(string(data))
		} else {
			h.partial = append([]byte(nil), data...)
		}
	}

	return len(p), nil
}

// Flush handles any buffered partial line. Call it after the process exits.
func (h *StderrHandler) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.partial) > 0 {
		h.handleLine(string(h.partial))
		h.partial = nil
	}
}

// handleLine stores and logs one line. Callers hold h.mu.
func (h *StderrHandler) handleLine(line string) {
	line = strings.TrimRight(line, "\r")
	if len(line) > MaxLineLength {
		line = truncateLine(line, MaxLineLength) + "...(truncated)"
	}
	if strings.TrimSpace(line) == "" {
		return
	}

	if h.total >= MaxBufferedLines {
		h.dropped++
	}
	h.buffer[h.bufIdx] = line
	h.bufIdx = (h.bufIdx + 1) % MaxBufferedLines
	h.total++

	if h.logger != nil {
		h.logger.Debug("helper_stderr",
			"item", h.item,
			"line", line,
		)
	}
}

// truncateLine cuts line to at most n bytes without splitting a UTF-8
// sequence.
func truncateLine(line string, n int) string {
	if len(line) <= n {
		return line
	}
	for n > 0 && !utf8.RuneStart(line[n]) {
		n--
	}
	return line[:n]
}

// RecentLines returns up to n of the most recent lines, oldest first.
func (h *StderrHandler) RecentLines(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > MaxBufferedLines {
		n = MaxBufferedLines
	}
	if n > h.total {
		n = h.total
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.bufIdx - n + i + MaxBufferedLines) % MaxBufferedLines
		lines = append(lines, h.buffer[idx])
	}

	return lines
}

// Text returns the retained stderr as a single line, trimmed.
func (h *StderrHandler) Text() string {
	lines := h.RecentLines(MaxBufferedLines)
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text := strings.Join(lines, "; ")

	h.mu.Lock()
	dropped := h.dropped
	h.mu.Unlock()

	if dropped > 0 {
		return "..." + text
	}
	return text
}

// LineCount returns the number of non-blank lines seen.
func (h *StderrHandler) LineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

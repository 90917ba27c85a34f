package fileserv

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// headless is the console of a served run, output is collected and
// INPUT answers come from the request
type headless struct {
	out      strings.Builder
	input    []string
	row, col int
	now      func() time.Time
	deadline time.Time // zero for none
}

func newHeadless(input []string, now func() time.Time, limit time.Duration) *headless {
	h := &headless{input: input, row: 1, col: 1, now: now}
	if limit > 0 {
		h.deadline = now().Add(limit)
	}
	return h
}

// output is everything printed, as UTF-8
func (h *headless) output() string {
	text, err := charmap.CodePage437.NewDecoder().String(h.out.String())
	if err != nil {
		return h.out.String()
	}
	return text
}

func (h *headless) expired() bool {
	return !h.deadline.IsZero() && !h.now().Before(h.deadline)
}

// sleep doesn't wait when there is a deadline, it moves the deadline closer
func (h *headless) sleep(d time.Duration) {
	if h.deadline.IsZero() {
		time.Sleep(d)
		return
	}
	h.deadline = h.deadline.Add(-d)
}

func (h *headless) Cls() {
	h.row, h.col = 1, 1
}

func (h *headless) Print(msg string) {
	h.out.WriteString(msg)
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		h.row += strings.Count(msg, "\n")
		h.col = len(msg) - i
		return
	}
	h.col += len(msg)
}

func (h *headless) Println(msg string) {
	h.Print(msg + "\n")
}

func (h *headless) Locate(row, col int) {
	if row > 0 {
		h.row = row
	}
	if col > 0 {
		h.col = col
	}
}

func (h *headless) GetCursor() (int, int) {
	return h.row, h.col
}

func (h *headless) ReadLine(prompt string) (string, error) {
	h.Print(prompt)
	if len(h.input) == 0 {
		return "", io.EOF
	}
	ln := h.input[0]
	h.input = h.input[1:]
	h.Println(ln)
	return ln, nil
}

func (h *headless) ReadKeys(count int) []byte {
	return nil
}

// Keyless is always true, nobody is typing on a served run
func (h *headless) Keyless() bool {
	return true
}

func (h *headless) Color(fg, bg int) {}

func (h *headless) SoundBell() {}

// BreakCheck stops the run once its time is up
func (h *headless) BreakCheck() bool {
	return h.expired()
}

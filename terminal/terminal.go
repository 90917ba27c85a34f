// Package terminal is the console for programs run from a shell. BASIC
// strings are code page 437 bytes, the terminal speaks UTF-8.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/navionguy/qbasic/keybuffer"
	"github.com/navionguy/qbasic/object"
	"github.com/peterh/liner"
	"golang.org/x/term"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrBreak is returned by ReadLine when Ctrl-C ends the input
var ErrBreak = errors.New("break")

const keyPoll = 10 * time.Millisecond

// BASIC color numbers to ANSI color offsets
var ansiColor = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

// Terminal holds the terminal instance and provides io abilities
type Terminal struct {
	out   io.Writer
	in    io.Reader
	lines *bufio.Reader // input when line editing is off
	line  *liner.State  // line editing, nil when in isn't a terminal
	kbuff *keybuffer.KeyBuffer
	ansi  bool        // out understands escape sequences
	raw   *term.State // saved tty state while WatchKeys runs
	fd    int

	enc *encoding.Encoder
	dec *encoding.Decoder

	row, col      int
	width, height int
	fg, bg        int
}

// New creates a terminal on in and out, line editing and escape
// sequences are used only when they are a tty
func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		out:    out,
		in:     in,
		lines:  bufio.NewReader(in),
		kbuff:  keybuffer.New(),
		enc:    encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder()),
		dec:    charmap.CodePage437.NewDecoder(),
		row:    1,
		col:    1,
		width:  80,
		height: 25,
		fg:     object.GWWhite,
		bg:     object.GWBlack,
		fd:     -1,
	}

	if of, ok := out.(*os.File); ok && term.IsTerminal(int(of.Fd())) {
		t.ansi = true
		if w, h, err := term.GetSize(int(of.Fd())); err == nil && w > 0 {
			t.width, t.height = w, h
		}
	}
	if inf, ok := in.(*os.File); ok && term.IsTerminal(int(inf.Fd())) {
		t.fd = int(inf.Fd())
		t.line = liner.NewLiner()
		t.line.SetCtrlCAborts(true)
	}
	return t
}

// Close gives the tty back the way it was found
func (t *Terminal) Close() error {
	var err error
	if t.raw != nil {
		err = term.Restore(t.fd, t.raw)
		t.raw = nil
	}
	if t.line != nil {
		if lerr := t.line.Close(); err == nil {
			err = lerr
		}
		t.line = nil
	}
	return err
}

// Keys is the buffer INKEY$ reads from
func (t *Terminal) Keys() *keybuffer.KeyBuffer {
	return t.kbuff
}

// WatchKeys puts the tty in raw mode and queues every keystroke so
// INKEY$ sees them as they are typed. Line editing is done here from
// then on.
func (t *Terminal) WatchKeys() error {
	if t.fd < 0 {
		return errors.New("input is not a terminal")
	}
	if t.line != nil {
		t.line.Close()
		t.line = nil
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.raw = state

	go func() {
		buf := make([]byte, 16)
		for {
			n, err := t.in.Read(buf)
			if n > 0 {
				t.kbuff.SaveKeyStroke(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// CatchInterrupts turns SIGINT into a break, call stop when done
func (t *Terminal) CatchInterrupts() (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt)

	go func() {
		for {
			select {
			case <-sigs:
				t.kbuff.SaveKeyStroke([]byte{0x03})
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// Println prints the string follow by a new line
func (t *Terminal) Println(msg string) {
	t.Print(msg + "\n")
}

// Print sends msg to the terminal at the current cursor position
func (t *Terminal) Print(msg string) {
	t.advance(msg)

	text, err := t.dec.String(msg)
	if err != nil {
		text = msg
	}
	if t.raw != nil {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	io.WriteString(t.out, text)
}

// advance moves my idea of the cursor past msg
func (t *Terminal) advance(msg string) {
	for i := 0; i < len(msg); i++ {
		switch msg[i] {
		case '\n':
			t.newLine()
		case '\r':
			t.col = 1
		default:
			t.col++
			if t.col > t.width {
				t.newLine()
			}
		}
	}
}

func (t *Terminal) newLine() {
	t.col = 1
	if t.row < t.height {
		t.row++
	}
}

// Locate moves the cursor, upper left is 1,1 and zero keeps the current value
func (t *Terminal) Locate(row, col int) {
	if row > 0 {
		t.row = row
	}
	if col > 0 {
		t.col = col
	}
	if t.ansi {
		fmt.Fprintf(t.out, "\x1b[%d;%dH", t.row, t.col)
	}
}

// GetCursor retrieves the current cursor position
func (t *Terminal) GetCursor() (int, int) {
	return t.row, t.col
}

// Cls clears the terminal of all text
func (t *Terminal) Cls() {
	t.row, t.col = 1, 1
	if t.ansi {
		io.WriteString(t.out, "\x1b[2J\x1b[H")
	}
}

// Color sets the text colors, 16 to 31 blink
func (t *Terminal) Color(fg, bg int) {
	if fg != object.ColorDefault {
		t.fg = fg
	}
	if bg != object.ColorDefault {
		t.bg = bg
	}
	if !t.ansi {
		return
	}

	sgr := "\x1b[0"
	fore := t.fg % 16
	if t.fg >= 16 {
		sgr += ";5"
	}
	if fore < 8 {
		sgr += fmt.Sprintf(";%d", 30+ansiColor[fore])
	} else {
		sgr += fmt.Sprintf(";%d", 90+ansiColor[fore-8])
	}
	sgr += fmt.Sprintf(";%dm", 40+ansiColor[t.bg%8])
	io.WriteString(t.out, sgr)
}

// SoundBell rings the terminal bell
func (t *Terminal) SoundBell() {
	io.WriteString(t.out, "\a")
}

// ReadLine shows prompt and waits for a line, the answer comes back
// in code page 437
func (t *Terminal) ReadLine(prompt string) (string, error) {
	var ln string
	var err error

	switch {
	case t.raw != nil:
		t.Print(prompt)
		ln, err = t.rawLine()
	case t.line != nil:
		text, _ := t.dec.String(prompt)
		ln, err = t.line.Prompt(text)
		if errors.Is(err, liner.ErrPromptAborted) {
			t.kbuff.SaveKeyStroke([]byte{0x03})
			err = ErrBreak
		}
		if err == nil && len(ln) > 0 {
			t.line.AppendHistory(ln)
		}
	default:
		t.Print(prompt)
		ln, err = t.lines.ReadString('\n')
		if err == io.EOF && len(ln) > 0 {
			err = nil
		}
		ln = strings.TrimRight(ln, "\r\n")
	}

	t.newLine()
	if err != nil {
		return "", err
	}

	bts, err := t.enc.String(ln)
	if err != nil {
		return ln, nil
	}
	return bts, nil
}

// rawLine edits a line out of the key buffer
func (t *Terminal) rawLine() (string, error) {
	var ln []byte
	for {
		if t.kbuff.BreakSeen() {
			io.WriteString(t.out, "^C\r\n")
			return "", ErrBreak
		}

		bt, err := t.kbuff.ReadByte()
		if err != nil {
			time.Sleep(keyPoll)
			continue
		}

		switch bt {
		case '\r', '\n':
			io.WriteString(t.out, "\r\n")
			return string(ln), nil
		case 0x04:
			if len(ln) == 0 {
				return "", io.EOF
			}
		case 0x08, 0x7f:
			if len(ln) > 0 {
				ln = ln[:len(ln)-1]
				io.WriteString(t.out, "\b \b")
			}
		default:
			if bt >= ' ' {
				ln = append(ln, bt)
				t.out.Write([]byte{bt})
			}
		}
	}
}

// ReadKeys takes up to count keystrokes without waiting
func (t *Terminal) ReadKeys(count int) []byte {
	return t.kbuff.Drain(count)
}

// BreakCheck reports a Ctrl-C since the last check
func (t *Terminal) BreakCheck() bool {
	bc := t.kbuff.BreakSeen()
	t.kbuff.ClearBreak()

	return bc
}

package mocks

import (
	"io"
	"strings"
)

// MockTerm is a Console that records output and replays canned input
type MockTerm struct {
	Row     int
	Col     int
	Output  strings.Builder // everything printed
	Input   []string        // lines handed out by ReadLine
	Keys    []byte          // keystrokes handed out by ReadKeys
	Prompts []string        // prompts ReadLine was given
	Fg, Bg  int
	SawCls  bool
	Beeps   int
	Break   bool // BreakCheck result
}

// NewMockTerm returns a terminal with the cursor at home
func NewMockTerm(input ...string) *MockTerm {
	return &MockTerm{Row: 1, Col: 1, Input: input}
}

func (mt *MockTerm) Cls() {
	mt.SawCls = true
	mt.Row, mt.Col = 1, 1
}

func (mt *MockTerm) Print(msg string) {
	mt.Output.WriteString(msg)
	mt.Col += len(msg)
}

func (mt *MockTerm) Println(msg string) {
	mt.Output.WriteString(msg + "\n")
	mt.Row++
	mt.Col = 1
}

func (mt *MockTerm) Locate(row, col int) {
	if row > 0 {
		mt.Row = row
	}
	if col > 0 {
		mt.Col = col
	}
}

func (mt *MockTerm) GetCursor() (int, int) {
	return mt.Row, mt.Col
}

// ReadLine pops the next canned line, io.EOF once they run out
func (mt *MockTerm) ReadLine(prompt string) (string, error) {
	mt.Prompts = append(mt.Prompts, prompt)
	mt.Output.WriteString(prompt)
	if len(mt.Input) == 0 {
		return "", io.EOF
	}
	ln := mt.Input[0]
	mt.Input = mt.Input[1:]
	mt.Output.WriteString(ln + "\n")
	mt.Row++
	mt.Col = 1
	return ln, nil
}

func (mt *MockTerm) ReadKeys(count int) []byte {
	if count > len(mt.Keys) {
		count = len(mt.Keys)
	}
	bt := mt.Keys[:count]
	mt.Keys = mt.Keys[count:]
	return bt
}

func (mt *MockTerm) Color(fg, bg int) {
	if fg >= 0 {
		mt.Fg = fg
	}
	if bg >= 0 {
		mt.Bg = bg
	}
}

func (mt *MockTerm) SoundBell() {
	mt.Beeps++
}

func (mt *MockTerm) BreakCheck() bool {
	return mt.Break
}

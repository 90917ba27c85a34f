// Package keybuffer queues keystrokes between the goroutine reading the
// keyboard and the running program, INKEY$ and SLEEP drain it.
package keybuffer

import (
	"errors"
	"sync"
)

const (
	ringsize = 128  // one slot always stays empty
	ctrlC    = 0x03 // break
)

// ErrEmpty means no keystroke is waiting
var ErrEmpty = errors.New("key buffer empty")

// KeyBuffer is a ring of keystrokes, safe for one writer and one reader
type KeyBuffer struct {
	mu       sync.Mutex
	ring     [ringsize]byte
	read     int
	write    int
	sigBreak bool
}

// New returns an empty buffer
func New() *KeyBuffer {
	return &KeyBuffer{}
}

// SaveKeyStroke queues keys, a Ctrl-C raises the break flag instead of
// being queued and keys that don't fit are dropped
func (kb *KeyBuffer) SaveKeyStroke(keys []byte) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	for _, bt := range keys {
		if bt == ctrlC {
			kb.sigBreak = true
			continue
		}
		next := (kb.write + 1) % ringsize
		if next == kb.read {
			return
		}
		kb.ring[kb.write] = bt
		kb.write = next
	}
}

// ReadByte takes the oldest keystroke
func (kb *KeyBuffer) ReadByte() (byte, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.read == kb.write {
		return 0, ErrEmpty
	}
	bt := kb.ring[kb.read]
	kb.read = (kb.read + 1) % ringsize
	return bt, nil
}

// Drain takes up to count keystrokes without waiting
func (kb *KeyBuffer) Drain(count int) []byte {
	var keys []byte
	for len(keys) < count {
		bt, err := kb.ReadByte()
		if err != nil {
			break
		}
		keys = append(keys, bt)
	}
	return keys
}

// BreakSeen reports a Ctrl-C since the last ClearBreak
func (kb *KeyBuffer) BreakSeen() bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.sigBreak
}

func (kb *KeyBuffer) ClearBreak() {
	kb.mu.Lock()
	kb.sigBreak = false
	kb.mu.Unlock()
}

func (kb *KeyBuffer) size() int {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return (kb.write - kb.read + ringsize) % ringsize
}

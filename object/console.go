package object

// GWBasic color values for screen work,https://hwiegman.home.xs4all.nl/gw-man/SCREENS.html
const (
	GWBlack     = iota // 0
	GWBlue             // 1
	GWGreen            // 2
	GWCyan             // 3
	GWRed              // 4
	GWMagenta          // 5
	GWBrown            // 6
	GWWhite            // 7
	GWGray             // 8
	GWLtBlue           // 9
	GWLtGreen          // 10
	GWLtCyan           // 11
	GWLtRed            // 12
	GWLtMagenta        // 13
	GWYellow           // 14
	GWBrtWhite         // 15
)

// ColorDefault leaves the current color alone
const ColorDefault = -1

// Console defines how to collect input and display output
type Console interface {
	// Cls clears the screen contents
	Cls()
	// Print outputs the passed string at the curent cursor position
	Print(string)
	// Println prints the string followed by a CR/LF
	Println(string)

	// Locate moves the cursor to the desired (row, col), zero keeps the current value
	Locate(int, int)
	// GetCursor, return cursor location(row, col)
	GetCursor() (int, int)
	// ReadLine shows prompt and blocks for one line of input, io.EOF when input is closed
	ReadLine(prompt string) (string, error)
	// ReadKeys reads up to (count) keycode values without waiting
	ReadKeys(count int) []byte
	// Color sets foreground and background, ColorDefault keeps either one
	Color(fg, bg int)
	// SoundBell emits facsimile of a console beep
	SoundBell()
	// BreakCheck returns true if a ctrl-c was entered
	BreakCheck() bool
}

// Keyless is implemented by consoles with no keyboard behind them.
// SLEEP without a time returns at once on them.
type Keyless interface {
	Keyless() bool
}

// Display is the drawing surface behind SCREEN, PSET, LINE and friends.
// Coordinates and colors arrive already evaluated.
type Display interface {
	// Screen switches video mode, false if the mode isn't supported
	Screen(mode int) bool
	// Mode is the current video mode, 0 is text only
	Mode() int
	Pset(x, y, color int)
	Line(x1, y1, x2, y2, color int, box, fill bool)
	Circle(x, y, radius, color int, start, end, aspect float64)
	Paint(x, y, fill, border int)
	// GetImage captures a rectangle in the GET array layout
	GetImage(x1, y1, x2, y2 int) []int16
	// PutImage draws an image from GetImage, action is PSET, PRESET, AND, OR or XOR
	PutImage(x, y int, img []int16, action string)
}

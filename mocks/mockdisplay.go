package mocks

import "fmt"

// MockDisplay records every drawing call as a string
type MockDisplay struct {
	ScreenMode int
	Modes      []int // modes Screen accepts, besides 0
	Calls      []string
	Image      []int16 // what GetImage returns
}

// NewMockDisplay supports text mode and the listed graphics modes
func NewMockDisplay(modes ...int) *MockDisplay {
	return &MockDisplay{Modes: modes}
}

func (md *MockDisplay) Screen(mode int) bool {
	if mode != 0 {
		found := false
		for _, m := range md.Modes {
			found = found || m == mode
		}
		if !found {
			return false
		}
	}
	md.ScreenMode = mode
	md.Calls = append(md.Calls, fmt.Sprintf("SCREEN %d", mode))
	return true
}

func (md *MockDisplay) Mode() int {
	return md.ScreenMode
}

func (md *MockDisplay) Pset(x, y, color int) {
	md.Calls = append(md.Calls, fmt.Sprintf("PSET %d,%d,%d", x, y, color))
}

func (md *MockDisplay) Line(x1, y1, x2, y2, color int, box, fill bool) {
	md.Calls = append(md.Calls, fmt.Sprintf("LINE %d,%d,%d,%d,%d,%t,%t", x1, y1, x2, y2, color, box, fill))
}

func (md *MockDisplay) Circle(x, y, radius, color int, start, end, aspect float64) {
	md.Calls = append(md.Calls, fmt.Sprintf("CIRCLE %d,%d,%d,%d,%g,%g,%g", x, y, radius, color, start, end, aspect))
}

func (md *MockDisplay) Paint(x, y, fill, border int) {
	md.Calls = append(md.Calls, fmt.Sprintf("PAINT %d,%d,%d,%d", x, y, fill, border))
}

func (md *MockDisplay) GetImage(x1, y1, x2, y2 int) []int16 {
	md.Calls = append(md.Calls, fmt.Sprintf("GET %d,%d,%d,%d", x1, y1, x2, y2))
	return md.Image
}

func (md *MockDisplay) PutImage(x, y int, img []int16, action string) {
	md.Calls = append(md.Calls, fmt.Sprintf("PUT %d,%d,%d,%s", x, y, len(img), action))
}

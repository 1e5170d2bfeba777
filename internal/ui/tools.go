package ui

import "fmt"

// Button is one of the drawing commands the host shell exposes.
type Button int

const (
	ButtonUndo Button = iota
	ButtonStartNew
	ButtonDraw
	ButtonCurve
	ButtonLeftCurve
	ButtonRightCurve
	ButtonSave
)

var buttonNames = [...]string{
	ButtonUndo:       "undo",
	ButtonStartNew:   "new",
	ButtonDraw:       "draw",
	ButtonCurve:      "curve",
	ButtonLeftCurve:  "left",
	ButtonRightCurve: "right",
	ButtonSave:       "save",
}

func (b Button) String() string {
	if b < 0 || int(b) >= len(buttonNames) {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return buttonNames[b]
}

// ParseButton maps a command name back to its button.
func ParseButton(name string) (Button, bool) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), true
		}
	}
	return 0, false
}

// curveOnly reports whether b is usable only while curve mode is on.
func (b Button) curveOnly() bool {
	return b == ButtonLeftCurve || b == ButtonRightCurve
}

// enabled is the button table: curve mode locks everything except the curve
// toggle and the bend buttons, which are otherwise locked.
func enabled(b Button, curveMode bool) bool {
	if b == ButtonCurve {
		return true
	}
	return b.curveOnly() == curveMode
}

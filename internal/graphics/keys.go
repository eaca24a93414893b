package graphics

import "strings"

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown: "UNKNOWN",
	KeyEscape:  "ESCAPE",
	KeyEnter:   "ENTER",
	KeySpace:   "SPACE",
	KeyUp:      "UP",
	KeyDown:    "DOWN",
	KeyLeft:    "LEFT",
	KeyRight:   "RIGHT",
	KeyF1:      "F1",
	KeyF2:      "F2",
	KeyF3:      "F3",
	KeyF4:      "F4",
	KeyF5:      "F5",
	KeyF6:      "F6",
	KeyF7:      "F7",
	KeyF8:      "F8",
	KeyF9:      "F9",
	KeyF10:     "F10",
	KeyF11:     "F11",
	KeyF12:     "F12",
}

func init() {
	for i := Key0; i <= Key9; i++ {
		keyNames[i] = string(rune('0' + int(i-Key0)))
	}
	for i := KeyA; i <= KeyZ; i++ {
		keyNames[i] = string(rune('A' + int(i-KeyA)))
	}
}

// String returns the key name as used in configuration files
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// KeyByName looks up a key by its configuration name, ignoring case
func KeyByName(name string) (Key, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if keyNames[k] == name {
			return k, true
		}
	}
	return KeyUnknown, false
}

// KeyFromRune maps a printable character to a key
func KeyFromRune(r rune) Key {
	switch {
	case r >= '0' && r <= '9':
		return Key0 + Key(r-'0')
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a')
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A')
	case r == ' ':
		return KeySpace
	case r == '\r' || r == '\n':
		return KeyEnter
	}
	return KeyUnknown
}

// Package input implements the 16-key hexadecimal keypad.
package input

import (
	"fmt"
	"log"
	"strings"
)

// NumKeys is the number of keys on the keypad
const NumKeys = 16

// Key identifies a keypad key by its hexadecimal value
type Key uint8

const (
	Key0 Key = iota
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
)

// String returns the hex digit of the key
func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k))
}

// Keypad holds the pressed state of each key. The host writes it between
// cycles; the interpreter only reads it.
type Keypad struct {
	keys [NumKeys]bool

	debugEnabled bool
}

// New creates a Keypad with every key released
func New() *Keypad {
	return &Keypad{}
}

// SetKey sets the state of one key. Values outside 0-F are ignored.
func (k *Keypad) SetKey(key Key, pressed bool) {
	if int(key) >= NumKeys {
		return
	}
	if k.debugEnabled && k.keys[key] != pressed {
		log.Printf("[KEYPAD_DEBUG] key=%s pressed=%t", key, pressed)
	}
	k.keys[key] = pressed
}

// SetKeys replaces the whole keypad state at once
func (k *Keypad) SetKeys(keys [NumKeys]bool) {
	for i, pressed := range keys {
		k.SetKey(Key(i), pressed)
	}
}

// IsPressed reports whether the key with the given value is down. Values
// outside 0-F read as not pressed.
func (k *Keypad) IsPressed(value uint8) bool {
	if int(value) >= NumKeys {
		return false
	}
	return k.keys[value]
}

// FirstPressed scans keys 0-F in order and returns the first pressed one
func (k *Keypad) FirstPressed() (Key, bool) {
	for i, pressed := range k.keys {
		if pressed {
			return Key(i), true
		}
	}
	return 0, false
}

// State returns a copy of all key states
func (k *Keypad) State() [NumKeys]bool {
	return k.keys
}

// EnableDebug toggles logging of key transitions
func (k *Keypad) EnableDebug(enable bool) {
	k.debugEnabled = enable
}

// Layout maps keypad values to physical key names, indexed by hex value
type Layout [NumKeys]string

// DefaultLayout is the conventional QWERTY mapping of the COSMAC VIP keypad:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultLayout = Layout{
	"X", "1", "2", "3",
	"Q", "W", "E", "A",
	"S", "D", "Z", "C",
	"4", "R", "F", "V",
}

// Lookup returns the keypad key bound to a physical key name
func (l Layout) Lookup(name string) (Key, bool) {
	for i, bound := range l {
		if bound != "" && strings.EqualFold(bound, name) {
			return Key(i), true
		}
	}
	return 0, false
}

// Validate checks that no physical key is bound twice
func (l Layout) Validate() error {
	seen := make(map[string]int, NumKeys)
	for i, name := range l {
		if name == "" {
			continue
		}
		upper := strings.ToUpper(name)
		if prev, ok := seen[upper]; ok {
			return fmt.Errorf("key %q bound to both %X and %X", name, prev, i)
		}
		seen[upper] = i
	}
	return nil
}

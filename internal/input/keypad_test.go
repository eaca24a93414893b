package input

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestNew_ShouldCreateKeypadWithAllKeysReleased(t *testing.T) {
	keypad := New()

	for i := 0; i < NumKeys; i++ {
		if keypad.IsPressed(uint8(i)) {
			t.Errorf("Key %X should start released", i)
		}
	}
	if _, ok := keypad.FirstPressed(); ok {
		t.Error("FirstPressed should report nothing on a fresh keypad")
	}
}

func TestSetKey_ShouldUpdateOnlyThatKey(t *testing.T) {
	keypad := New()

	for key := Key0; key <= KeyF; key++ {
		keypad.SetKey(key, true)
		if !keypad.IsPressed(uint8(key)) {
			t.Errorf("Key %s should be pressed", key)
		}

		state := keypad.State()
		for i, pressed := range state {
			if i != int(key) && pressed {
				t.Errorf("Key %X unexpectedly pressed while setting %s", i, key)
			}
		}

		keypad.SetKey(key, false)
		if keypad.IsPressed(uint8(key)) {
			t.Errorf("Key %s should be released", key)
		}
	}
}

func TestSetKeys_ShouldLogOnlyTransitions(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	keypad := New()
	keypad.EnableDebug(true)
	keypad.SetKey(Key1, true)
	buf.Reset()

	var keys [NumKeys]bool
	keys[Key1] = true
	keys[KeyA] = true
	keypad.SetKeys(keys)

	out := buf.String()
	if got := strings.Count(out, "[KEYPAD_DEBUG]"); got != 1 || !strings.Contains(out, "key=A pressed=true") {
		t.Errorf("Expected one transition for key A, got %q", out)
	}

	buf.Reset()
	keypad.SetKeys([NumKeys]bool{})
	if got := strings.Count(buf.String(), "pressed=false"); got != 2 {
		t.Errorf("Expected 2 release transitions, got %d: %q", got, buf.String())
	}
	if keypad.State() != ([NumKeys]bool{}) {
		t.Errorf("Expected all keys released, got %v", keypad.State())
	}
}

func TestIsPressed_OutOfRangeIsNotPressed(t *testing.T) {
	keypad := New()
	keypad.SetKeys([NumKeys]bool{true, true, true, true, true, true, true, true,
		true, true, true, true, true, true, true, true})

	for _, value := range []uint8{16, 0x20, 0xFF} {
		if keypad.IsPressed(value) {
			t.Errorf("Value 0x%02X should never read as pressed", value)
		}
	}

	keypad.SetKey(Key(16), true) // ignored
}

func TestFirstPressed_ScansInAscendingOrder(t *testing.T) {
	keypad := New()
	keypad.SetKey(KeyC, true)
	keypad.SetKey(Key5, true)

	key, ok := keypad.FirstPressed()
	if !ok {
		t.Fatal("Expected a pressed key")
	}
	if key != Key5 {
		t.Errorf("Expected key 5, got %s", key)
	}

	keypad.SetKeys([NumKeys]bool{})
	if _, ok := keypad.FirstPressed(); ok {
		t.Error("Expected no key after clearing the keypad")
	}
}

func TestLayout_Lookup(t *testing.T) {
	tests := []struct {
		name     string
		expected Key
	}{
		{"X", Key0},
		{"1", Key1},
		{"q", Key4},
		{"Z", KeyA},
		{"4", KeyC},
		{"V", KeyF},
	}

	for _, tt := range tests {
		key, ok := DefaultLayout.Lookup(tt.name)
		if !ok {
			t.Errorf("Expected %q to be bound", tt.name)
			continue
		}
		if key != tt.expected {
			t.Errorf("Lookup(%q): expected %s, got %s", tt.name, tt.expected, key)
		}
	}

	if _, ok := DefaultLayout.Lookup("P"); ok {
		t.Error("P should not be bound in the default layout")
	}
}

func TestLayout_Validate(t *testing.T) {
	if err := DefaultLayout.Validate(); err != nil {
		t.Errorf("Default layout should be valid: %v", err)
	}

	layout := DefaultLayout
	layout[0x1] = "x"
	if err := layout.Validate(); err == nil {
		t.Error("Expected duplicate binding error")
	}
}

package mixloop

import "fmt"

// Key identifies a physical key on a computer keyboard.
type Key int

const (
	KeyA Key = iota
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
	KeyMinus
	KeyEqual
	KeyLeftBracket
	KeyRightBracket
	KeySemicolon
	KeyApostrophe
	KeyComma
	KeyPeriod
	KeySlash
	KeySpace
	KeyCount
)

func (k Key) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + int(k-KeyA)))
	case k >= Key0 && k <= Key9:
		return string(rune('0' + int(k-Key0)))
	}
	switch k {
	case KeyMinus:
		return "-"
	case KeyEqual:
		return "="
	case KeyLeftBracket:
		return "["
	case KeyRightBracket:
		return "]"
	case KeySemicolon:
		return ";"
	case KeyApostrophe:
		return "'"
	case KeyComma:
		return ","
	case KeyPeriod:
		return "."
	case KeySlash:
		return "/"
	case KeySpace:
		return "space"
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

type inputState struct {
	keys   [KeyCount]bool
	mouseX float64
	mouseY float64
}

// Input is the live keyboard and mouse state. Collaborators (a window,
// a test) write it from any goroutine; the graph reads it through
// signals that see one consistent snapshot per tick.
type Input struct {
	live Box[inputState]
	view Signal[*inputState]
}

func NewInput() *Input {
	in := &Input{}
	in.view = Stateful[*inputState](&snapshot[inputState]{box: &in.live})
	return in
}

// SetKey records a key press or release.
func (in *Input) SetKey(k Key, down bool) {
	if k < 0 || k >= KeyCount {
		return
	}
	in.live.Update(func(s *inputState) { s.keys[k] = down })
}

// SetMouse01 records the pointer position normalized to 0..1 on both axes.
func (in *Input) SetMouse01(x, y float64) {
	in.live.Update(func(s *inputState) {
		s.mouseX = clamp(x, 0, 1)
		s.mouseY = clamp(y, 0, 1)
	})
}

// ReleaseAll lifts every key, for example when the window loses focus.
func (in *Input) ReleaseAll() {
	in.live.Update(func(s *inputState) { s.keys = [KeyCount]bool{} })
}

// Key returns the gate of one key.
func (in *Input) Key(k Key) Gate {
	if k < 0 || k >= KeyCount {
		return GateConst(false)
	}
	return Gate{Map(in.view, func(s *inputState) bool { return s.keys[k] })}
}

func (in *Input) MouseX01() Sf64 {
	return Sf64{Map(in.view, func(s *inputState) float64 { return s.mouseX })}
}

func (in *Input) MouseY01() Sf64 {
	return Sf64{Map(in.view, func(s *inputState) float64 { return s.mouseY })}
}

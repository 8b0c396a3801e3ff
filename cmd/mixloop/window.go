package main

import (
	"context"
	"fmt"
	"runtime"

	ml "github.com/cellux/mixloop"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const pollHz = 120

func init() {
	runtime.LockOSThread()
}

var glfwKeys = map[glfw.Key]ml.Key{
	glfw.KeyA: ml.KeyA, glfw.KeyB: ml.KeyB, glfw.KeyC: ml.KeyC, glfw.KeyD: ml.KeyD,
	glfw.KeyE: ml.KeyE, glfw.KeyF: ml.KeyF, glfw.KeyG: ml.KeyG, glfw.KeyH: ml.KeyH,
	glfw.KeyI: ml.KeyI, glfw.KeyJ: ml.KeyJ, glfw.KeyK: ml.KeyK, glfw.KeyL: ml.KeyL,
	glfw.KeyM: ml.KeyM, glfw.KeyN: ml.KeyN, glfw.KeyO: ml.KeyO, glfw.KeyP: ml.KeyP,
	glfw.KeyQ: ml.KeyQ, glfw.KeyR: ml.KeyR, glfw.KeyS: ml.KeyS, glfw.KeyT: ml.KeyT,
	glfw.KeyU: ml.KeyU, glfw.KeyV: ml.KeyV, glfw.KeyW: ml.KeyW, glfw.KeyX: ml.KeyX,
	glfw.KeyY: ml.KeyY, glfw.KeyZ: ml.KeyZ,
	glfw.Key0: ml.Key0, glfw.Key1: ml.Key1, glfw.Key2: ml.Key2, glfw.Key3: ml.Key3,
	glfw.Key4: ml.Key4, glfw.Key5: ml.Key5, glfw.Key6: ml.Key6, glfw.Key7: ml.Key7,
	glfw.Key8: ml.Key8, glfw.Key9: ml.Key9,
	glfw.KeyMinus:        ml.KeyMinus,
	glfw.KeyEqual:        ml.KeyEqual,
	glfw.KeyLeftBracket:  ml.KeyLeftBracket,
	glfw.KeyRightBracket: ml.KeyRightBracket,
	glfw.KeySemicolon:    ml.KeySemicolon,
	glfw.KeyApostrophe:   ml.KeyApostrophe,
	glfw.KeyComma:        ml.KeyComma,
	glfw.KeyPeriod:       ml.KeyPeriod,
	glfw.KeySlash:        ml.KeySlash,
	glfw.KeySpace:        ml.KeySpace,
}

// runWindow opens an input-only window and feeds its keyboard and mouse
// into in until the window is closed, Escape is pressed or ctx is done.
// It must run on the main thread.
func runWindow(ctx context.Context, title string, in *ml.Input) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	window, err := glfw.CreateWindow(640, 480, title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
			return
		}
		k, ok := glfwKeys[key]
		if !ok || action == glfw.Repeat {
			return
		}
		in.SetKey(k, action == glfw.Press)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		width, height := w.GetSize()
		if width <= 0 || height <= 0 {
			return
		}
		// y grows upwards so that moving the mouse up opens filters
		in.SetMouse01(x/float64(width), 1-y/float64(height))
	})
	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if !focused {
			in.ReleaseAll()
		}
	})

	logger.Info("window open", "title", title)
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		glfw.WaitEventsTimeout(1.0 / pollHz)
	}
	return nil
}

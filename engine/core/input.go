package core

import "sync"

// KeyCode values follow the glfw key tokens so platform keys convert directly.
type KeyCode uint16

const (
	KeySpace        KeyCode = 32
	KeyA            KeyCode = 65
	KeyD            KeyCode = 68
	KeyE            KeyCode = 69
	KeyF            KeyCode = 70
	KeyH            KeyCode = 72
	KeyQ            KeyCode = 81
	KeyR            KeyCode = 82
	KeyS            KeyCode = 83
	KeyW            KeyCode = 87
	KeyZ            KeyCode = 90
	KeyEscape       KeyCode = 256
	KeyRight        KeyCode = 262
	KeyLeft         KeyCode = 263
	KeyDown         KeyCode = 264
	KeyUp           KeyCode = 265
	KeyLeftShift    KeyCode = 340
	KeyLeftControl  KeyCode = 341
	KeyRightShift   KeyCode = 344
	KeyRightControl KeyCode = 345

	MaxKeyCode KeyCode = 512
)

type keyboardState struct {
	keys [MaxKeyCode]bool
}

type inputSystemState struct {
	mutex            sync.Mutex
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
}

var inputState = &inputSystemState{}

// InputUpdate makes the current key states the previous ones. Call once per frame.
func InputUpdate() {
	inputState.mutex.Lock()
	defer inputState.mutex.Unlock()
	inputState.keyboardPrevious = inputState.keyboardCurrent
}

// InputReset releases every key without firing events.
func InputReset() {
	inputState.mutex.Lock()
	defer inputState.mutex.Unlock()
	inputState.keyboardCurrent = keyboardState{}
	inputState.keyboardPrevious = keyboardState{}
}

func InputIsKeyDown(key KeyCode) bool {
	if key >= MaxKeyCode {
		return false
	}
	inputState.mutex.Lock()
	defer inputState.mutex.Unlock()
	return inputState.keyboardCurrent.keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !InputIsKeyDown(key)
}

func InputWasKeyDown(key KeyCode) bool {
	if key >= MaxKeyCode {
		return false
	}
	inputState.mutex.Lock()
	defer inputState.mutex.Unlock()
	return inputState.keyboardPrevious.keys[key]
}

/**
 * @brief Records a key transition. Listeners of EventCodeKeyPressed and
 * EventCodeKeyReleased are notified only when the state actually changes.
 */
func InputProcessKey(key KeyCode, pressed bool) {
	if key >= MaxKeyCode {
		return
	}
	inputState.mutex.Lock()
	if inputState.keyboardCurrent.keys[key] == pressed {
		inputState.mutex.Unlock()
		return
	}
	inputState.keyboardCurrent.keys[key] = pressed
	inputState.mutex.Unlock()

	code := EventCodeKeyReleased
	if pressed {
		code = EventCodeKeyPressed
	}
	var ctx EventContext
	ctx.Data.U32[0] = uint32(key)
	EventFire(code, nil, ctx)
}

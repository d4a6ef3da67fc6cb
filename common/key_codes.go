package common

// Virtual key codes for the viewer's keyboard widgets.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyF     = 70  // F key (ASCII) - float animation
	KeyR     = 82  // R key (ASCII) - rotate animation
	KeyN     = 78  // N key (ASCII) - no animation
	KeyG     = 71  // G key (ASCII) - toggle ghost mode
	KeyV     = 86  // V key (ASCII) - toggle voice listening
	KeyMinus = 45  // - key (ASCII) - slower
	KeyEqual = 61  // = key (ASCII) - faster
	Key1     = 49  // 1 key (ASCII) - normal speed
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

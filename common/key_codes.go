package common

// Key codes shared between the window layer and input handlers.
// Values follow GLFW's key tokens (printable keys are ASCII).
const (
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
	KeyF2    = 291 // F2 function key (GLFW)
)

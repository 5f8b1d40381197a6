package app

// Key binding constants used in handleKey.
const (
	KeyCtrlC          = "ctrl+c"
	KeyEnter          = "enter"
	KeyTab            = "tab"
	KeyEsc            = "esc"
	KeyRecord         = "ctrl+r"
	KeyCancelRecord   = "ctrl+x"
	KeyTogglePlayback = "ctrl+p"
	KeyUp             = "up"
	KeyDown           = "down"
	KeyPgUp           = "pgup"
	KeyPgDown         = "pgdown"
)

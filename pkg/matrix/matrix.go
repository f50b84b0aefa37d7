// Package matrix provides the render backends the display scheduler
// writes to. Three variants exist: a plain console printer, a tcell
// pixel-grid simulator, and a tview panel layout. All of them consume
// display.Frame values and own their screen lifecycle.
package matrix

import (
	"fmt"

	"github.com/Frostfire25/airplane-project/pkg/config"
	"github.com/Frostfire25/airplane-project/pkg/display"
)

// Backend is a render sink with a screen lifecycle. Start shows the
// startup placard; Close clears the screen and releases the terminal.
type Backend interface {
	display.Sink

	// Start initializes the screen and shows the startup placard
	Start() error

	// Close clears the screen and releases resources
	Close() error
}

// Quitter is implemented by interactive backends that can request
// shutdown (e.g., the user pressed q). The daemon selects on Done.
type Quitter interface {
	Done() <-chan struct{}
}

// Open creates the backend named by MATRIX_BACKEND.
func Open(cfg *config.Store) (Backend, error) {
	name := cfg.GetString(config.KeyMatrixBackend, "console")
	width := cfg.GetInt(config.KeyMatrixWidth, config.DefaultMatrixWidth)
	height := cfg.GetInt(config.KeyMatrixHeight, config.DefaultMatrixHeight)

	switch name {
	case "console":
		return NewConsole(), nil
	case "grid":
		return NewGrid(width, height), nil
	case "panel":
		return NewPanel(), nil
	default:
		return nil, fmt.Errorf("unknown matrix backend %q", name)
	}
}

// scale dims a color by the frame brightness (0-255).
func scale(c config.RGB, brightness int) (r, g, b int32) {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 255 {
		brightness = 255
	}
	r = int32(int(c.R) * brightness / 255)
	g = int32(int(c.G) * brightness / 255)
	b = int32(int(c.B) * brightness / 255)
	return r, g, b
}

// hexColor renders a brightness-scaled color as "#rrggbb".
func hexColor(c config.RGB, brightness int) string {
	r, g, b := scale(c, brightness)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

package matrix

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Frostfire25/airplane-project/pkg/display"
)

// Console renders frames as a styled text card on stdout. This is the
// simulation backend: no terminal takeover, one card per frame, safe to
// pipe to a file.
type Console struct {
	out   io.Writer
	frame lipgloss.Style
}

// NewConsole creates a console backend writing to stdout.
func NewConsole() *Console {
	return &Console{
		out: os.Stdout,
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(28),
	}
}

// Start prints the startup placard.
func (c *Console) Start() error {
	banner := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffbf00")).Render("FLIGHT DISPLAY")
	_, err := fmt.Fprintln(c.out, c.frame.Render(banner))
	return err
}

// Render prints one frame.
func (c *Console) Render(f display.Frame) error {
	var lines []string
	lines = append(lines, styled(f.Time, f.Brightness))

	if f.NoAircraft {
		lines = append(lines, styled(f.Status, f.Brightness))
	} else {
		lines = append(lines, styled(f.Callsign, f.Brightness))
		lines = append(lines, styled(f.Distance, f.Brightness))
		lines = append(lines, styled(f.Altitude, f.Brightness)+"  "+styled(f.Speed, f.Brightness))
		if f.Route.Text != "" {
			lines = append(lines, styled(f.Route, f.Brightness))
		}
	}

	_, err := fmt.Fprintln(c.out, c.frame.Render(strings.Join(lines, "\n")))
	return err
}

// Close prints the shutdown placard.
func (c *Console) Close() error {
	_, err := fmt.Fprintln(c.out, c.frame.Render("display stopped"))
	return err
}

func styled(f display.Field, brightness int) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(f.Color, brightness))).
		Render(f.Text)
}

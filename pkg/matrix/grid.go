package matrix

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/Frostfire25/airplane-project/pkg/display"
)

// Grid simulates the LED matrix on a tcell screen: a bordered
// width x height cell area with one text row per frame field. Pressing
// q or Escape requests shutdown via Done.
type Grid struct {
	width  int
	height int

	mu     sync.Mutex
	screen tcell.Screen

	done     chan struct{}
	doneOnce sync.Once
}

// NewGrid creates a grid backend with the given matrix dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
}

// Start initializes the tcell screen, shows the startup placard, and
// begins consuming input events.
func (g *Grid) Start() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()

	g.mu.Lock()
	g.screen = screen
	g.mu.Unlock()

	g.drawRows([]row{{text: "FLIGHT DISPLAY", style: tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 191, 0))}})

	go g.eventLoop(screen)
	return nil
}

// Done reports user-requested shutdown.
func (g *Grid) Done() <-chan struct{} {
	return g.done
}

// Render draws one frame inside the matrix border.
func (g *Grid) Render(f display.Frame) error {
	rows := []row{fieldRow(f.Time, f.Brightness)}
	if f.NoAircraft {
		rows = append(rows, fieldRow(f.Status, f.Brightness))
	} else {
		rows = append(rows,
			fieldRow(f.Callsign, f.Brightness),
			fieldRow(f.Distance, f.Brightness),
			fieldRow(f.Altitude, f.Brightness),
			fieldRow(f.Speed, f.Brightness),
			fieldRow(f.Route, f.Brightness),
		)
	}
	g.drawRows(rows)
	return nil
}

// Close releases the terminal.
func (g *Grid) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.screen != nil {
		g.screen.Fini()
		g.screen = nil
	}
	return nil
}

type row struct {
	text  string
	style tcell.Style
}

func fieldRow(f display.Field, brightness int) row {
	r, gr, b := scale(f.Color, brightness)
	return row{text: f.Text, style: tcell.StyleDefault.Foreground(tcell.NewRGBColor(r, gr, b))}
}

func (g *Grid) drawRows(rows []row) {
	g.mu.Lock()
	defer g.mu.Unlock()
	screen := g.screen
	if screen == nil {
		return
	}

	screen.Clear()

	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	// Border marks the simulated panel edge; text rows sit inside it
	for x := 0; x <= g.width+1; x++ {
		screen.SetContent(x, 0, '─', nil, border)
		screen.SetContent(x, g.height/4+1, '─', nil, border)
	}
	for y := 0; y <= g.height/4+1; y++ {
		screen.SetContent(0, y, '│', nil, border)
		screen.SetContent(g.width+1, y, '│', nil, border)
	}
	screen.SetContent(0, 0, '┌', nil, border)
	screen.SetContent(g.width+1, 0, '┐', nil, border)
	screen.SetContent(0, g.height/4+1, '└', nil, border)
	screen.SetContent(g.width+1, g.height/4+1, '┘', nil, border)

	for i, r := range rows {
		y := i + 1
		if y > g.height/4 {
			break
		}
		for j, ch := range r.text {
			x := j + 2
			if x > g.width {
				break
			}
			screen.SetContent(x, y, ch, nil, r.style)
		}
	}

	screen.Show()
}

func (g *Grid) eventLoop(screen tcell.Screen) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			g.mu.Lock()
			if g.screen != nil {
				g.screen.Sync()
			}
			g.mu.Unlock()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				g.doneOnce.Do(func() { close(g.done) })
				return
			}
		}
	}
}

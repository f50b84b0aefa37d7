package matrix

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Frostfire25/airplane-project/pkg/display"
)

// Panel renders frames in a tview layout: one bordered text view per
// field plus a footer. This is the second simulator variant, closer to
// a dashboard than to the raw pixel grid.
type Panel struct {
	app      *tview.Application
	time     *tview.TextView
	callsign *tview.TextView
	distance *tview.TextView
	altitude *tview.TextView
	speed    *tview.TextView
	route    *tview.TextView

	done     chan struct{}
	doneOnce sync.Once
	runErr   chan error
}

// NewPanel creates a panel backend.
func NewPanel() *Panel {
	p := &Panel{
		app:      tview.NewApplication(),
		time:     newFieldView("Time"),
		callsign: newFieldView("Flight"),
		distance: newFieldView("Distance"),
		altitude: newFieldView("Altitude"),
		speed:    newFieldView("Speed"),
		route:    newFieldView("Route"),
		done:     make(chan struct{}),
		runErr:   make(chan error, 1),
	}

	top := tview.NewFlex().
		AddItem(p.time, 0, 1, false).
		AddItem(p.callsign, 0, 1, false)
	middle := tview.NewFlex().
		AddItem(p.distance, 0, 1, false).
		AddItem(p.altitude, 0, 1, false).
		AddItem(p.speed, 0, 1, false)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, false).
		AddItem(middle, 0, 1, false).
		AddItem(p.route, 0, 1, false)

	p.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			p.doneOnce.Do(func() { close(p.done) })
			return nil
		}
		return event
	})
	p.app.SetRoot(layout, true)
	return p
}

func newFieldView(title string) *tview.TextView {
	tv := tview.NewTextView().SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true).SetTitle(" " + title + " ")
	return tv
}

// Start launches the tview event loop and shows the startup placard.
func (p *Panel) Start() error {
	go func() {
		p.runErr <- p.app.Run()
	}()
	p.app.QueueUpdateDraw(func() {
		p.callsign.SetText("FLIGHT DISPLAY")
		p.callsign.SetTextColor(tcell.NewRGBColor(255, 191, 0))
	})
	return nil
}

// Done reports user-requested shutdown.
func (p *Panel) Done() <-chan struct{} {
	return p.done
}

// Render updates all field views from one frame.
func (p *Panel) Render(f display.Frame) error {
	p.app.QueueUpdateDraw(func() {
		setField(p.time, f.Time, f.Brightness)
		if f.NoAircraft {
			setField(p.callsign, f.Status, f.Brightness)
			setField(p.distance, display.Field{}, f.Brightness)
			setField(p.altitude, display.Field{}, f.Brightness)
			setField(p.speed, display.Field{}, f.Brightness)
			setField(p.route, display.Field{}, f.Brightness)
			return
		}
		setField(p.callsign, f.Callsign, f.Brightness)
		setField(p.distance, f.Distance, f.Brightness)
		setField(p.altitude, f.Altitude, f.Brightness)
		setField(p.speed, f.Speed, f.Brightness)
		setField(p.route, f.Route, f.Brightness)
	})
	return nil
}

// Close stops the tview application.
func (p *Panel) Close() error {
	p.app.Stop()
	select {
	case err := <-p.runErr:
		return err
	default:
		return nil
	}
}

func setField(tv *tview.TextView, f display.Field, brightness int) {
	r, g, b := scale(f.Color, brightness)
	tv.SetText(f.Text)
	tv.SetTextColor(tcell.NewRGBColor(r, g, b))
}

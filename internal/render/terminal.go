package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/driad/internal/color"
)

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
)

// Key represents a keyboard key.
type Key int

// Keys the frame loop cares about.
const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
)

// Event represents a terminal event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune

	Width, Height int
}

// IsQuit reports whether the event asks to stop: Escape, Ctrl-C or q.
func (e Event) IsQuit() bool {
	if e.Type != EventKey {
		return false
	}
	return e.Key == KeyEscape || e.Key == KeyCtrlC || (e.Key == KeyRune && (e.Rune == 'q' || e.Rune == 'Q'))
}

// Terminal is a Surface on a tcell screen.
type Terminal struct {
	screen tcell.Screen
	style  tcell.Style

	mu     sync.Mutex
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// NewTerminal creates a terminal surface on the controlling terminal.
func NewTerminal(palette color.Palette) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen, palette), nil
}

// NewTerminalWithScreen wraps an existing screen, such as a
// tcell.SimulationScreen.
func NewTerminalWithScreen(screen tcell.Screen, palette color.Palette) *Terminal {
	return &Terminal{
		screen: screen,
		style:  convertPalette(palette),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// Init initializes the screen and starts event delivery.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.SetStyle(t.style)
	t.screen.HideCursor()
	t.screen.Clear()

	go t.pump()
	return nil
}

// Shutdown restores the terminal. It is safe to call more than once.
func (t *Terminal) Shutdown() {
	t.once.Do(func() {
		close(t.done)
		t.mu.Lock()
		defer t.mu.Unlock()
		t.screen.Fini()
	})
}

// Events returns the event stream. It is closed after Shutdown.
func (t *Terminal) Events() <-chan Event {
	return t.events
}

// pump forwards tcell events until the screen is finalized.
func (t *Terminal) pump() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		event := convertEvent(ev)
		if event.Type == EventNone {
			continue
		}
		select {
		case t.events <- event:
		case <-t.done:
			return
		}
	}
}

// Size implements Surface.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// Clear implements Surface.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fill(' ', t.style)
}

// Put implements Surface.
func (t *Terminal) Put(glyph rune, x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	if inBounds(x, y, w, h) {
		t.screen.SetContent(x, y, glyph, nil, t.style)
	}
}

// Show implements Surface.
func (t *Terminal) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
	return nil
}

func convertPalette(p color.Palette) tcell.Style {
	return tcell.StyleDefault.
		Foreground(convertColor(p.Fg)).
		Background(convertColor(p.Bg))
}

func convertColor(c color.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{
			Type:   EventResize,
			Width:  w,
			Height: h,
		}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts tcell key to our Key type.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyRune:
		return KeyRune
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	case tcell.KeyCtrlC:
		return KeyCtrlC
	default:
		return KeyNone
	}
}

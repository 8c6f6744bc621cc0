package capability

import "fmt"

// Recognized capability names.
const (
	Init     = "init"
	DrawPass = "draw_pass"
)

// Names lists every capability the host recognizes, in lookup order.
var Names = []string{Init, DrawPass}

// DrawCommand places a single glyph at a cell position.
type DrawCommand struct {
	X     int32
	Y     int32
	Glyph rune
}

// String returns a string representation of the command.
func (c DrawCommand) String() string {
	return fmt.Sprintf("%q@(%d,%d)", c.Glyph, c.X, c.Y)
}

// API is the capability surface of one loaded plugin.
//
// Each accessor reports whether the plugin declares the capability. An absent
// capability is not an error.
type API interface {
	// TryInit runs the plugin's one-time initializer. The API does not
	// enforce "at most once"; calling twice invokes the callable twice.
	TryInit() (present bool, err error)

	// TryDrawPass runs the per-frame draw callable and marshals its result.
	TryDrawPass() (cmd DrawCommand, present bool, err error)

	// Capabilities returns the recognized capabilities the plugin declares.
	Capabilities() []string

	// Close releases the API's share of the engine.
	Close() error
}

// Engine compiles entry scripts into capability APIs.
//
// One Engine instance is shared by every plugin compiled against it. It is
// torn down once the owner and every API derived from it have been closed.
type Engine interface {
	// Name identifies the backend (e.g. "gopher-lua").
	Name() string

	// Compile evaluates source and wraps the resulting table. chunk names the
	// source in diagnostics.
	//
	// Compile executes arbitrary plugin code with the full privilege of the
	// engine.
	Compile(chunk, source string) (API, error)

	// Close releases the owner's share of the engine.
	Close() error
}

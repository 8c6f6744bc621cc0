package lua

import "errors"

// ErrNotTable is returned when an entry script does not evaluate to a table.
var ErrNotTable = errors.New("entry script must return a table")

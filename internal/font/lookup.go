package font

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LookupTable maps icon names to cell coordinates in an extension atlas.
//
//	[data]
//	heart = [3, 0]
//	sword = [4, 1]
type LookupTable struct {
	Data map[string][2]uint32 `toml:"data"`
}

// LoadLookupTable reads a TOML lookup table.
func LoadLookupTable(path string) (LookupTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LookupTable{}, fmt.Errorf("read lookup table: %w", err)
	}
	return ParseLookupTable(data)
}

// ParseLookupTable decodes a TOML lookup table.
func ParseLookupTable(data []byte) (LookupTable, error) {
	var table LookupTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return LookupTable{}, fmt.Errorf("parse lookup table: %w", err)
	}
	if table.Data == nil {
		table.Data = make(map[string][2]uint32)
	}
	return table, nil
}

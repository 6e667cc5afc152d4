package parser

import (
	"fmt"
	"os"
	"path/filepath"
)

// ParseFile reads and parses an assembly source file
func ParseFile(path string) (*Program, *Error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied source path
	if err != nil {
		return nil, NewError(Position{Filename: path}, ErrorFileIO,
			fmt.Sprintf("cannot read source file: %v", err))
	}

	return NewParser(string(data), filepath.Base(path)).Parse()
}

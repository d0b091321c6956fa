package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
)

func isAsm(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".s", ".asm":
		return true
	}
	return false
}

// LoadFile reads a program to be placed at entry. Assembly sources are
// recognized by extension; anything else is read as hex words.
func LoadFile(path string, entry uint64) (models.Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open program")
	}
	defer f.Close()
	if isAsm(path) {
		return NewAsmLoader(f, path, entry)
	}
	return NewHexLoader(f, path, entry)
}

package loader

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
)

// AsmLoader assembles source text at the entry address.
type AsmLoader struct {
	LoaderBase
}

func NewAsmLoader(r io.Reader, path string, entry uint64) (models.Loader, error) {
	src, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	words, err := mips.Assemble(string(src), uint32(entry))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to assemble %s", path)
	}
	return &AsmLoader{LoaderBase{path: path, entry: entry, words: words}}, nil
}

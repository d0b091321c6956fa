package loader

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/models"
)

// HexError points at the offending token of a hex program.
type HexError struct {
	Line  int
	Token string
	Err   error
}

func (e *HexError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": bad word " + strconv.Quote(e.Token) + ": " + e.Err.Error()
}

// LoadHex reads whitespace-separated hex words, with or without a 0x prefix.
// Text from # or // to the end of a line is ignored.
func LoadHex(r io.Reader) ([]uint32, error) {
	var words []uint32
	s := bufio.NewScanner(r)
	for line := 1; s.Scan(); line++ {
		text := s.Text()
		if i := strings.Index(text, "#"); i >= 0 {
			text = text[:i]
		}
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		for _, tok := range strings.Fields(text) {
			digits := strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			w, err := strconv.ParseUint(digits, 16, 32)
			if err != nil {
				return nil, &HexError{Line: line, Token: tok, Err: err}
			}
			words = append(words, uint32(w))
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read program")
	}
	return words, nil
}

type HexLoader struct {
	LoaderBase
}

func NewHexLoader(r io.Reader, path string, entry uint64) (models.Loader, error) {
	words, err := LoadHex(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return &HexLoader{LoaderBase{path: path, entry: entry, words: words}}, nil
}

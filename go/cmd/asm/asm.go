package asm

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/cmd"
	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
)

// Main assembles a source file into the hex word format the loader reads.
func Main(args []string) {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	base := fs.Uint64("base", models.DefaultRegions[0].Addr, "address of the first instruction")
	outfile := fs.String("o", "", "output file (default stdout)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file.s>\n", args[0])
		fs.PrintDefaults()
	}
	fs.Parse(args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	if err := assemble(fs.Arg(0), *outfile, uint32(*base)); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func assemble(in, outfile string, base uint32) error {
	src, err := ioutil.ReadFile(in)
	if err != nil {
		return errors.WithStack(err)
	}
	words, err := mips.Assemble(string(src), base)
	if err != nil {
		return err
	}
	out := os.Stdout
	if outfile != "" {
		if out, err = os.Create(outfile); err != nil {
			return errors.WithStack(err)
		}
		defer out.Close()
	}
	for _, w := range words {
		if _, err := fmt.Fprintf(out, "%08x\n", w); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func init() { cmd.Register("asm", "assemble source into a loadable hex file", Main) }

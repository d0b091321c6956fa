package dis

import (
	"flag"
	"fmt"
	"os"

	"github.com/lunixbochs/mumips/go/cmd"
	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/loader"
	"github.com/lunixbochs/mumips/go/models"
)

// Main prints the disassembly of a program file.
func Main(args []string) {
	fs := flag.NewFlagSet("dis", flag.ExitOnError)
	base := fs.Uint64("base", models.DefaultRegions[0].Addr, "address of the first word")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <program>\n", args[0])
		fs.PrintDefaults()
	}
	fs.Parse(args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	l, err := loader.LoadFile(fs.Arg(0), *base)
	if err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
	words := l.Words()
	for i, w := range words {
		addr := l.Entry() + uint64(i)*4
		ins, _ := mips.Decode(w, addr)
		fmt.Printf("0x%08x: %08x  %s\n", addr, w, ins)
	}
}

func init() { cmd.Register("dis", "disassemble a program file", Main) }

package trace

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/cmd"
	"github.com/lunixbochs/mumips/go/cpu/mips"
	"github.com/lunixbochs/mumips/go/models"
	"github.com/lunixbochs/mumips/go/models/trace"
	"github.com/lunixbochs/mumips/go/ui"
)

func PrintJson(w io.Writer, tf *trace.TraceReader) error {
	out, err := json.Marshal(&tf.Header)
	if err != nil {
		return errors.Wrap(err, "error printing header")
	}
	fmt.Fprintf(w, "%s\n", out)
	for {
		op, err := tf.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "error reading next trace operation")
		}
		out, err := json.Marshal(op)
		if err != nil {
			return errors.Wrap(err, "error printing op")
		}
		fmt.Fprintf(w, "%s\n", out)
	}
	return nil
}

func PrintPretty(w io.Writer, tf *trace.TraceReader, verbose bool) error {
	if tf.Header.Arch != mips.Arch.Name {
		return errors.Errorf("unsupported trace arch %q", tf.Header.Arch)
	}
	config := &models.Config{Output: w, Verbose: verbose}
	replay := trace.NewReplay(mips.Arch, tf.Header.Order)
	stream := ui.NewStreamUI(config, replay)
	for {
		op, err := tf.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "error reading next trace operation")
		}
		if err := stream.Feed(op); err != nil {
			return err
		}
	}
	stream.OnExit()
	return nil
}

func Main(args []string) {
	fs := flag.NewFlagSet("args", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "output trace as line-delimited JSON objects")
	prettyFlag := fs.Bool("pretty", false, "output trace as human-readable console text")
	verbose := fs.Bool("v", false, "include keyframes in -pretty output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <tracefile>\n", args[0])
		fs.PrintDefaults()
	}

	fs.Parse(args[1:])
	if fs.NArg() == 0 || !(*jsonFlag || *prettyFlag) {
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open: %s %v\n", path, err)
		os.Exit(1)
	}
	tf, err := trace.NewReader(f)
	if err != nil {
		f.Close()
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
	defer tf.Close()
	if *jsonFlag {
		err = PrintJson(os.Stdout, tf)
	} else {
		err = PrintPretty(os.Stdout, tf, *verbose)
	}
	if err != nil {
		cmd.PrintError(os.Stderr, err)
		tf.Close()
		os.Exit(1)
	}
}

func init() { cmd.Register("trace", "print a recorded execution trace", Main) }

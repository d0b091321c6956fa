package repl

import (
	"os"
	"strconv"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/cmd"
	"github.com/lunixbochs/mumips/go/debug"
	"github.com/lunixbochs/mumips/go/ui"
)

func Main(args []string) {
	c := cmd.NewSimCmd()
	var listen *int
	c.SetupFlags = func() error {
		listen = c.Flags.Int("listen", -1, "serve the command shell on localhost:<port> instead of the terminal")
		return nil
	}
	c.RunSim = func(s *mumips.Sim) error {
		if *listen > 0 {
			conn, err := debug.Accept(os.Stderr, "localhost", strconv.Itoa(*listen))
			if err != nil {
				return err
			}
			return debug.NewDebugger(s, os.Stderr).Serve(conn)
		}
		repl, err := ui.NewRepl(s)
		if err != nil {
			return err
		}
		return repl.Run()
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("repl", "load a program into the interactive simulator shell", Main) }

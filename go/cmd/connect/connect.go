package connect

import (
	"fmt"
	"net"
	"os"

	"github.com/lunixbochs/mumips/go/cmd"
	"github.com/lunixbochs/mumips/go/debug"
)

func Main(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <port>\n", args[0])
		os.Exit(1)
	}
	if err := debug.RunClient(net.JoinHostPort("localhost", args[1])); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() { cmd.Register("connect", "attach to a shell started with repl -listen", Main) }

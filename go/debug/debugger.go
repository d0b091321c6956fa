package debug

import (
	"bufio"
	"fmt"
	"io"
	"net"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/debug/cmd"
)

// Debugger runs the simulator command loop over a remote connection.
type Debugger struct {
	sim *mumips.Sim
	log io.Writer
}

func NewDebugger(s *mumips.Sim, log io.Writer) *Debugger {
	return &Debugger{sim: s, log: log}
}

// Serve reads one command per line from c until quit or EOF, then closes c.
func (d *Debugger) Serve(c io.ReadWriteCloser) error {
	defer c.Close()
	if conn, ok := c.(net.Conn); ok {
		fmt.Fprintf(d.log, "Debug connection from %s\n", conn.RemoteAddr())
	}
	ctx := &cmd.Context{Writer: c, S: d.sim}
	scanner := bufio.NewScanner(c)
	for scanner.Scan() {
		if err := cmd.Run(ctx, scanner.Text()); err == cmd.ErrQuit {
			return nil
		}
	}
	return scanner.Err()
}

package debug

import (
	"io"
	"net"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"github.com/lunixbochs/mumips/go/ui"
)

// like go io.Copy(), but returns a channel to notify you upon completion
func copyNotify(dst io.Writer, src io.Reader) chan int {
	ret := make(chan int, 1)
	go func() {
		io.Copy(dst, src)
		ret <- 1
	}()
	return ret
}

// RunClient edits commands locally and sends them to a remote Debugger.
func RunClient(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "error connecting to debug server")
	}
	defer conn.Close()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      ui.Prompt,
		HistoryFile: ui.HistoryPath(),
	})
	if err != nil {
		return errors.Wrap(err, "error opening readline")
	}
	defer rl.Close()
	remoteEOF := copyNotify(rl.Stdout(), conn)
	go func() {
		<-remoteEOF
		rl.Close()
	}()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			return errors.Wrap(err, "write to debug server failed")
		}
	}
}

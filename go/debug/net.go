package debug

import (
	"fmt"
	"io"
	"net"

	"github.com/pkg/errors"
)

// Accept waits for a single connection on host:port.
func Accept(log io.Writer, host, port string) (net.Conn, error) {
	addr := net.JoinHostPort(host, port)
	fmt.Fprintf(log, "Waiting for connection on %s\n", addr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listen failed")
	}
	defer ln.Close()
	conn, err := ln.Accept()
	return conn, errors.Wrap(err, "accept failed")
}

package cmd

import (
	"fmt"
	"io"

	mumips "github.com/lunixbochs/mumips/go"
)

type Context struct {
	io.Writer
	S *mumips.Sim
}

func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}

package main

import (
	"github.com/lunixbochs/mumips/go/cmd"

	_ "github.com/lunixbochs/mumips/go/cmd/run"

	_ "github.com/lunixbochs/mumips/go/cmd/asm"
	_ "github.com/lunixbochs/mumips/go/cmd/connect"
	_ "github.com/lunixbochs/mumips/go/cmd/dis"
	_ "github.com/lunixbochs/mumips/go/cmd/repl"
	_ "github.com/lunixbochs/mumips/go/cmd/trace"
)

func main() { cmd.Main() }

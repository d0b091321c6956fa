package ui

import (
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/debug/cmd"
)

const Prompt = "MU-MIPS SIM:> "

type Repl struct {
	s   *mumips.Sim
	rl  *readline.Instance
	ctx *cmd.Context
}

type nullCloser struct{ io.Writer }

func (n *nullCloser) Close() error { return nil }

// HistoryPath is the readline history file, or "" if the cache folder can't be created.
func HistoryPath() string {
	configDirs := configdir.New("mumips", "repl")
	cacheDir := configDirs.QueryCacheFolder()
	if err := cacheDir.MkdirAll(); err != nil {
		return ""
	}
	return filepath.Join(cacheDir.Path, "history")
}

func NewRepl(s *mumips.Sim) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		InterruptPrompt: "\n",
		HistoryFile:     HistoryPath(),
	})
	if err != nil {
		return nil, err
	}
	// hijack simulator output so it doesn't clobber the prompt
	if s.Config().Output == os.Stderr {
		s.Config().Output = &nullCloser{rl.Stderr()}
	}
	return &Repl{
		s:   s,
		rl:  rl,
		ctx: &cmd.Context{Writer: rl.Stdout(), S: s},
	}, nil
}

// Run reads commands until quit or EOF.
func (r *Repl) Run() error {
	defer r.Close()
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if err := cmd.Run(r.ctx, line); err == cmd.ErrQuit {
			return nil
		}
	}
}

func (r *Repl) Close() error {
	return r.rl.Close()
}

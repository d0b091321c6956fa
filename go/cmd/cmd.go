package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/models"
)

// SimCmd builds a Config from flags, loads the named program and hands the
// simulator to RunSim.
type SimCmd struct {
	Config *models.Config
	Flags  *flag.FlagSet

	SetupFlags func() error
	MakeSim    func(path string) (*mumips.Sim, error)
	RunSim     func(s *mumips.Sim) error

	Sim *mumips.Sim
	// instruction limit for the default RunSim, 0 for none
	Count int
}

func NewSimCmd() *SimCmd {
	fs := flag.NewFlagSet("cli", flag.ExitOnError)
	c := &SimCmd{Flags: fs}
	c.MakeSim = func(path string) (*mumips.Sim, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.WithStack(err)
		}
		return mumips.NewSim(path, c.Config)
	}
	c.RunSim = func(s *mumips.Sim) error {
		if c.Count > 0 {
			return s.Run(c.Count)
		}
		return s.RunAll()
	}
	return c
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints err, and a stack trace if one was recorded.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w, "Error: %s\n", err)
	st, ok := err.(stackTracer)
	if !ok {
		if cause, ok := errors.Cause(err).(stackTracer); ok {
			st = cause
		} else {
			return
		}
	}
	var frames [][]string
	for _, f := range st.StackTrace() {
		fullpath := ""
		fileline := fmt.Sprintf("%s:%d", f, f)
		method := fmt.Sprintf("%n", f)

		tmp := strings.SplitN(fmt.Sprintf("%+s", f), "\n", 3)
		if len(tmp) == 2 {
			pathsplit := strings.Split(tmp[0], "/")
			method = pathsplit[len(pathsplit)-1]
			fullpath = strings.TrimSpace(tmp[1])
		}
		frames = append(frames, []string{fullpath, fileline, method})
		if method == "main.main" {
			break
		}
	}
	widths := make([]int, 2)
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if len(f[i]) > widths[i] {
				widths[i] = len(f[i])
			}
		}
	}
	for _, f := range frames {
		for i := 0; i < 2; i++ {
			if widths[i] > 0 {
				pad := strings.Repeat(" ", widths[i]-len(f[i]))
				fmt.Fprintf(w, "%s%s | ", f[i], pad)
			}
		}
		fmt.Fprintf(w, "%s()\n", f[2])
	}
}

// Run parses argv and runs the program. The return value is the process exit code.
func (c *SimCmd) Run(argv []string) int {
	fs := c.Flags
	verbose := fs.Bool("v", false, "print every instruction as it executes")
	color := fs.Bool("color", false, "highlight changed registers in rdump")
	zero := fs.Bool("zero", false, "force $zero to read as 0 after every step")
	base := fs.Uint64("base", 0, "load address of the program (default: text region base)")
	tracefile := fs.String("trace", "", "record a binary execution trace to <file>")
	count := fs.Int("n", 0, "stop after <n> instructions (0 runs until syscall)")
	outfile := fs.String("o", "", "redirect simulator output to file (default stderr)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <program>\n\nOptions:\n", argv[0])
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			PrintError(os.Stderr, err)
			return 1
		}
	}
	fs.Parse(argv[1:])
	args := fs.Args()
	if len(args) < 1 {
		fs.Usage()
		return 1
	}

	c.Config = &models.Config{
		Color:        *color,
		Verbose:      *verbose,
		HardwireZero: *zero,
		LoadBase:     *base,
		TraceFile:    *tracefile,
	}
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			PrintError(os.Stderr, errors.WithStack(err))
			return 1
		}
		defer out.Close()
		c.Config.Output = out
	}
	c.Count = *count

	s, err := c.MakeSim(args[0])
	if err != nil {
		PrintError(os.Stderr, err)
		return 1
	}
	c.Sim = s
	err = c.RunSim(s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		PrintError(os.Stderr, err)
		return 1
	}
	return 0
}

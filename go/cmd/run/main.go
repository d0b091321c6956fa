package run

import (
	"os"

	mumips "github.com/lunixbochs/mumips/go"
	"github.com/lunixbochs/mumips/go/cmd"
)

func Main(args []string) {
	c := cmd.NewSimCmd()
	run := c.RunSim
	c.RunSim = func(s *mumips.Sim) error {
		if err := run(s); err != nil {
			return err
		}
		changes, err := s.Status().Changes(false)
		if err != nil {
			return err
		}
		s.Printf("\n[%d instructions, pc %#08x]\n", s.Count(), s.PC())
		s.Printf("%s", changes.String(s.Config().Color))
		return nil
	}
	os.Exit(c.Run(args))
}

func init() { cmd.Register("run", "simulate a program until syscall", Main) }

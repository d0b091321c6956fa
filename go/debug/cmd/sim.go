package cmd

import (
	"strings"

	"github.com/lunixbochs/mumips/go/cpu/mips"
)

func runErr(c *Context, err error) error {
	if err == mips.ErrStopped {
		c.Printf("Can't simulate, Simulator is halted\n\n")
		return nil
	}
	return err
}

var SimCmd = cmd(&Command{
	Name: "sim",
	Desc: "simulate program to completion",
	Run: func(c *Context) error {
		c.Printf("Simulation Started...\n\n")
		if err := c.S.RunAll(); err != nil {
			return runErr(c, err)
		}
		c.Printf("Simulation Finished.\n\n")
		return nil
	},
})

var RunCmd = cmd(&Command{
	Name:  "run",
	Usage: "<n>",
	Desc:  "simulate program for <n> instructions",
	Run: func(c *Context, n int) error {
		c.Printf("Running simulator for %d cycles...\n\n", n)
		return runErr(c, c.S.Run(n))
	},
})

var StepCmd = cmd(&Command{
	Name: "step",
	Desc: "simulate one instruction and show it",
	Run: func(c *Context) error {
		pc := c.S.PC()
		if err := c.S.Step(); err == mips.ErrStopped {
			return runErr(c, err)
		}
		// step diagnostics already went to the simulator output
		if dis, err := c.S.Dis(pc, 1); err == nil {
			c.Printf("%s\n", dis)
		}
		return nil
	},
})

var ResetCmd = cmd(&Command{
	Name: "reset",
	Desc: "clears all registers/memory and re-loads the program",
	Run: func(c *Context) error {
		return c.S.Reset()
	},
})

var PrintCmd = cmd(&Command{
	Name: "print",
	Desc: "print the program loaded into memory",
	Run: func(c *Context) error {
		words, base := c.S.Program()
		if len(words) == 0 {
			return nil
		}
		dis, err := c.S.Dis(base, len(words))
		if err != nil {
			return err
		}
		c.Printf("%s\n", dis)
		return nil
	},
})

var DisCmd = cmd(&Command{
	Name:  "dis",
	Usage: "<addr> <count>",
	Desc:  "disassemble <count> words from <addr>",
	Run: func(c *Context, addr Addr, count int) error {
		dis, err := c.S.Dis(uint32(addr), count)
		if err != nil {
			return err
		}
		c.Printf("%s\n", dis)
		return nil
	},
})

var SaveCmd = cmd(&Command{
	Name:  "save",
	Usage: "<file>",
	Desc:  "write a savestate to <file>",
	Run: func(c *Context, path string) error {
		return c.S.SaveFile(path)
	},
})

var RestoreCmd = cmd(&Command{
	Name:  "restore",
	Usage: "<file>",
	Desc:  "load a savestate from <file>",
	Run: func(c *Context, path string) error {
		return c.S.RestoreFile(path)
	},
})

var HelpCmd = cmd(&Command{
	Name:  "help",
	Alias: []string{"?"},
	Desc:  "display help menu",
	Run: func(c *Context) error {
		c.Printf("------------------------------------------------------------------\n\n")
		c.Printf("\t**********MU-MIPS Help MENU**********\n\n")
		for _, cmd := range Sorted() {
			name := strings.TrimSpace(cmd.Name + " " + cmd.Usage)
			c.Printf("%s\t-- %s\n", name, cmd.Desc)
		}
		c.Printf("\n------------------------------------------------------------------\n\n")
		return nil
	},
})

var QuitCmd = cmd(&Command{
	Name: "quit",
	Desc: "exit the simulator",
	Run: func(c *Context) error {
		c.Printf("**************************\n")
		c.Printf("Exiting MU-MIPS! Good Bye...\n")
		c.Printf("**************************\n")
		return ErrQuit
	},
})

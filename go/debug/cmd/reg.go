package cmd

import (
	"github.com/lunixbochs/mumips/go/cpu/mips"
)

var RdumpCmd = cmd(&Command{
	Name: "rdump",
	Desc: "dump register values",
	Run: func(c *Context) error {
		changes, err := c.S.Status().Changes(false)
		if err != nil {
			return err
		}
		c.Printf("-------------------------------------\n")
		c.Printf("Dumping Register Content\n")
		c.Printf("-------------------------------------\n")
		c.Printf("# Instructions Executed\t: %d\n", c.S.Count())
		c.Printf("PC\t: 0x%08x\n", c.S.PC())
		c.Printf("-------------------------------------\n")
		c.Printf("%s", changes.String(c.S.Config().Color))
		c.Printf("-------------------------------------\n")
		return nil
	},
})

var InputCmd = cmd(&Command{
	Name:  "input",
	Usage: "<reg> <val>",
	Desc:  "set GPR <reg> to <val>",
	Run: func(c *Context, reg Reg, val Val) error {
		return c.S.RegWrite(int(reg), uint64(val))
	},
})

var HighCmd = cmd(&Command{
	Name:  "high",
	Usage: "<val>",
	Desc:  "set the HI register to <val>",
	Run: func(c *Context, val Val) error {
		return c.S.RegWrite(mips.HI, uint64(val))
	},
})

var LowCmd = cmd(&Command{
	Name:  "low",
	Usage: "<val>",
	Desc:  "set the LO register to <val>",
	Run: func(c *Context, val Val) error {
		return c.S.RegWrite(mips.LO, uint64(val))
	},
})

package cmd

import (
	"github.com/lunixbochs/mumips/go/models"
)

var MapsCmd = cmd(&Command{
	Name: "maps",
	Desc: "display memory regions",
	Run: func(c *Context) error {
		for _, m := range c.S.Mappings() {
			c.Printf("  %v\n", m.String())
		}
		return nil
	},
})

var MdumpCmd = cmd(&Command{
	Name:  "mdump",
	Usage: "<start> <stop>",
	Desc:  "dump memory from <start> to <stop> address",
	Run: func(c *Context, start, stop Addr) error {
		if stop < start {
			return nil
		}
		c.Printf("-------------------------------------------------------------\n")
		c.Printf("Memory content [0x%08x..0x%08x] :\n", uint32(start), uint32(stop))
		c.Printf("-------------------------------------------------------------\n")
		c.Printf("\t[Address in Hex (Dec) ]\t[Value]\n")
		for addr := uint64(start); addr <= uint64(stop); addr += 4 {
			w, err := c.S.Read32(uint32(addr))
			if err != nil {
				return err
			}
			c.Printf("\t%s\n", models.WordDump(addr, []uint32{w})[0])
		}
		c.Printf("\n")
		return nil
	},
})

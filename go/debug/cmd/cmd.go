package cmd

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/lunixbochs/argjoy"
	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// ErrQuit is returned by Run when the user asks to leave.
var ErrQuit = errors.New("quit")

type Command struct {
	Name  string
	Alias []string
	Usage string
	Desc  string
	// func(c *Context, args...) error, with fixed arity
	Run interface{}
}

var Commands = make(map[string]*Command)

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.Type().IsVariadic() {
		panic(fmt.Sprintf("Command.Run must be a fixed-arity func: got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	for _, a := range c.Alias {
		Commands[a] = c
	}
	return c
}

// Sorted lists every command once, by name.
func Sorted() []*Command {
	var out []*Command
	for name, c := range Commands {
		if name == c.Name {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return sortorder.NaturalLess(out[i].Name, out[j].Name) })
	return out
}

// Find resolves an exact name or alias, then a unique prefix, case-insensitively.
func Find(name string) (*Command, error) {
	name = strings.ToLower(name)
	if c, ok := Commands[name]; ok {
		return c, nil
	}
	var match *Command
	for _, c := range Sorted() {
		if strings.HasPrefix(c.Name, name) {
			if match != nil {
				return nil, errors.Errorf("ambiguous command %q: %s or %s", name, match.Name, c.Name)
			}
			match = c
		}
	}
	if match == nil {
		return nil, errors.Errorf("command not found: %s", name)
	}
	return match, nil
}

var aj = argjoy.NewArgjoy()

func init() {
	aj.Register(argCodec)
}

func (c *Command) call(ctx *Context, args []string) error {
	fn := reflect.ValueOf(c.Run)
	fnt := fn.Type()
	if len(args) != fnt.NumIn()-1 {
		return errors.Errorf("usage: %s %s", c.Name, c.Usage)
	}
	in := make([]reflect.Type, len(args))
	for i := range in {
		in[i] = fnt.In(i + 1)
	}
	converted, err := aj.Convert(in, false, args)
	if err != nil {
		return errors.Wrapf(err, "usage: %s %s", c.Name, c.Usage)
	}
	vals := append([]reflect.Value{reflect.ValueOf(ctx)}, converted...)
	out := fn.Call(vals)
	if len(out) > 0 {
		if err, ok := out[0].Interface().(error); ok {
			return err
		}
	}
	return nil
}

// Run parses and executes one command line. Command errors are printed; only
// ErrQuit is returned.
func Run(c *Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		c.Printf("parse error: %v\n", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]
	command, err := Find(name)
	if err != nil {
		c.Printf("%v\n", err)
		return nil
	}
	if err := command.call(c, args); err == ErrQuit {
		return err
	} else if err != nil {
		c.Printf("error: %v\n", err)
	}
	return nil
}

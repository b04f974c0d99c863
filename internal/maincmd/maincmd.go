// Package maincmd implements the CLI surface: a one-shot "compile a file"
// driver plus an "init" scaffolding command, with a handful of extra
// single-phase dev commands (tokenize/parse/resolve/lower) for inspecting
// each stage in isolation. A flag-tagged Cmd struct is populated by
// mainer.Parser, runs through a Validate step, then dispatches through a
// reflection-based buildCmds table keyed by lowercased method name.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "gloin"

var (
	shortUsage = fmt.Sprintf(`
usage: %s init [<name>]
       %[1]s <file.src> [<option>...] [<out>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s init [<name>]
       %[1]s <file.src> [<option>...] [<out>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the gloin programming language: lexer, parser, resolver and
IR lowerer, front to back.

       init [<name>]            Scaffold a new project in the current
                                 directory (or <name>, if given).
       <file.src>                Compile the given source file. The
                                 default output path is <file.src> with
                                 its ".src" suffix stripped.

Valid flag options for compiling are:
       --debug                   Print the AST and the lowered IR module,
                                 then continue compiling.
       --ast --parse-only        Print the AST and the lowered IR module,
                                 then stop: do not write an output file.
       -o --output <name>        Override the output path.

A handful of single-phase commands are also available, each taking one or
more file paths and printing that phase's output:
       tokenize <file.src>...
       parse    <file.src>...
       resolve  <file.src>...
       lower    <file.src>...

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is populated by mainer.Parser from os.Args and flag/env defaults,
// then dispatched by Main: exported flag-tagged fields, a slice of
// positional args, and a resolved command function.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Debug  bool   `flag:"debug"`
	Ast    bool   `flag:"ast,parse-only"`
	Output string `flag:"o,output"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

// devCommands names the explicit command keywords (the single-phase
// inspection commands, plus compile) that take over arg[0] instead of
// treating it as a source file to compile.
var devCommands = map[string]bool{
	"tokenize": true,
	"parse":    true,
	"resolve":  true,
	"lower":    true,
	"compile":  true,
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command or source file specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)

	switch {
	case cmdName == "init":
		c.cmdFn = commands["init"]
	case devCommands[cmdName]:
		c.cmdFn = commands[cmdName]
		if len(c.args[1:]) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", cmdName)
		}
	default:
		// Not a known keyword: arg[0] is a source file and the implicit
		// command is "compile".
		c.cmdFn = commands["compile"]
	}

	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cmdArgs := c.args
	if len(cmdArgs) > 0 && devCommands[cmdArgs[0]] {
		cmdArgs = cmdArgs[1:]
	} else if len(cmdArgs) > 0 && cmdArgs[0] == "init" {
		cmdArgs = cmdArgs[1:]
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, cmdArgs); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds builds a reflection-based dispatch table: any exported method
// matching func(context.Context, mainer.Stdio, []string) error is
// registered under its lowercased name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

package main

import (
	"strings"

	"github.com/beevik/cmd"

	"github.com/go6809/asm6809/asm"
	"github.com/go6809/asm6809/listing"
)

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("asm6809")
	root.AddCommand(cmd.Command{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Session).cmdHelp,
	})
	root.AddCommand(cmd.Command{
		Name:  "assemble",
		Brief: "Assemble a file from disk",
		Description: "Run the cross-assembler on the named source file," +
			" producing a .bin image, a .map source map, and a .sym symbol" +
			" file alongside it.",
		Usage: "assemble <filename>",
		Data:  (*Session).cmdAssemble,
	})
	root.AddCommand(cmd.Command{
		Name:        "symbols",
		Brief:       "List the exported symbols of the last assembly",
		Description: "Display every EXPORTed symbol and its final value from the most recently assembled file.",
		Usage:       "symbols",
		Data:        (*Session).cmdSymbols,
	})
	root.AddCommand(cmd.Command{
		Name:        "listing",
		Brief:       "Display a hex listing of the last assembly",
		Description: "Display the assembled bytes of the most recently assembled file as an address-prefixed hex dump.",
		Usage:       "listing",
		Data:        (*Session).cmdListing,
	})
	root.AddCommand(cmd.Command{
		Name:        "quit",
		Brief:       "Quit the assembler shell",
		Description: "Exit the interactive asm6809 session.",
		Usage:       "quit",
		Data:        (*Session).cmdQuit,
	})
	cmds = root
}

func (s *Session) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		s.displayCommands(cmds)
		return nil
	}
	sel, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil {
		s.printf("%v\n", err)
		return nil
	}
	if sel.Command.Subtree != nil {
		s.displayCommands(sel.Command.Subtree)
		return nil
	}
	s.displayUsage(sel.Command)
	if sel.Command.Description != "" {
		s.printf("%s\n", sel.Command.Description)
	} else if sel.Command.Brief != "" {
		s.printf("%s.\n", sel.Command.Brief)
	}
	return nil
}

func (s *Session) displayUsage(c *cmd.Command) {
	if c.Usage != "" {
		s.printf("Usage: %s\n", c.Usage)
	}
}

func (s *Session) displayCommands(t *cmd.Tree) {
	s.printf("%s commands:\n", t.Title)
	for _, c := range t.Commands {
		if c.Brief != "" {
			s.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
}

func (s *Session) cmdAssemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		s.displayUsage(c.Command)
		return nil
	}
	filename := c.Args[0]
	if err := s.assembleFile(filename); err != nil {
		s.printf("ERROR: %v\n", err)
		return nil
	}
	if err := s.writeOutputs(baseName(s.lastFile)); err != nil {
		s.printf("ERROR: %v\n", err)
		return nil
	}
	s.printf("Assembled %s: %d byte(s), %d exported symbol(s).\n",
		s.lastFile, totalSize(s.lastResult), len(s.lastResult.Exported))
	return nil
}

func (s *Session) cmdSymbols(c cmd.Selection) error {
	if s.lastResult == nil {
		s.println("Nothing has been assembled yet.")
		return nil
	}
	for _, e := range s.lastResult.Exported {
		s.printf("%-24s %v\n", e.Name, e.Value)
	}
	return nil
}

func (s *Session) cmdListing(c cmd.Selection) error {
	if s.lastResult == nil {
		s.println("Nothing has been assembled yet.")
		return nil
	}
	if err := listing.WriteHex(s.output, s.lastResult.Spans); err != nil {
		return err
	}
	return s.output.Flush()
}

type cmdQuitError struct{}

func (cmdQuitError) Error() string { return "quit" }

var errQuit = cmdQuitError{}

func (s *Session) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func totalSize(r *asm.Result) int {
	n := 0
	for _, sp := range r.Spans {
		n += sp.Size()
	}
	return n
}

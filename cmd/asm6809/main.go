package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/term"
)

func main() {
	s := NewSession()
	s.input = bufio.NewScanner(os.Stdin)
	s.output = bufio.NewWriter(os.Stdout)
	defer s.output.Flush()

	args := os.Args[1:]
	if len(args) > 0 {
		for _, filename := range args {
			if err := s.assembleFile(filename); err != nil {
				exitOnError(err)
			}
			if err := s.writeOutputs(baseName(s.lastFile)); err != nil {
				exitOnError(err)
			}
			s.printf("Assembled %s: %d byte(s), %d exported symbol(s).\n",
				s.lastFile, totalSize(s.lastResult), len(s.lastResult.Exported))
		}
		return
	}

	s.runInteractive()
}

// runInteractive drives a beevik/cmd command tree over stdin/stdout. A
// prompt is printed only when stdin is actually a terminal, so piping
// a batch of commands through asm6809 on stdin produces clean,
// unprompted output.
func (s *Session) runInteractive() {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	for {
		if interactive {
			fmt.Fprint(os.Stdout, "asm6809> ")
		}
		if !s.input.Scan() {
			break
		}
		line := strings.TrimSpace(s.input.Text())
		if line == "" {
			continue
		}

		sel, err := cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			s.println("Command not found.")
			continue
		case err == cmd.ErrAmbiguous:
			s.println("Command is ambiguous.")
			continue
		case err != nil:
			s.printf("ERROR: %v\n", err)
			continue
		}
		if sel.Command == nil {
			continue
		}
		if sel.Command.Data == nil && sel.Command.Subtree != nil {
			s.displayCommands(sel.Command.Subtree)
			continue
		}

		handler := sel.Command.Data.(func(*Session, cmd.Selection) error)
		if err := handler(s, sel); err != nil {
			if _, quit := err.(cmdQuitError); quit {
				return
			}
			s.printf("ERROR: %v\n", err)
		}
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "asm6809: %v\n", err)
	os.Exit(1)
}

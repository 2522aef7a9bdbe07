package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session: one DSL statement per line",
	RunE:  runREPL,
}

func runREPL(cmd *cobra.Command, args []string) error {
	s := newSession()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("sys2dsl repl - one statement per line, :quit to exit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}
		result, err := s.Run(line + "\n")
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			continue
		}
		for name, b := range result.Bindings {
			fmt.Printf("  @%s = %s\n", name, bindingString(b))
		}
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %v\n", e)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

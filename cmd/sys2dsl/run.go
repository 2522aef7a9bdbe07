package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Execute a DSL program and print the bindings, facts, and proofs it produced",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgram,
}

func runProgram(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	s := newSession()
	result, err := s.Run(string(src))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	fmt.Printf("learned %d fact(s), %d quer(y/ies), %d proof(s)\n",
		len(result.Learned), len(result.Queries), len(result.Proofs))
	for name, b := range result.Bindings {
		fmt.Printf("  @%s = %s\n", name, bindingString(b))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d statement(s) failed", len(result.Errors))
	}
	return nil
}

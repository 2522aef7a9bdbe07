package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sys2dsl/engine/pkg/engine"
)

var proveCmd = &cobra.Command{
	Use:   "prove [operator] [args...]",
	Short: "Run backward-chaining proof search and print the derivation",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProve,
}

func runProve(cmd *cobra.Command, args []string) error {
	s := newSession()
	result := s.Prove(args[0], args[1:], engine.Options{})
	fmt.Printf("valid=%v confidence=%.2f method=%s depth=%d\n",
		result.Valid, result.Confidence, result.Method, result.Depth)
	if !result.Valid && result.Reason != "" {
		fmt.Printf("reason: %s\n", result.Reason)
	}
	for i, step := range result.Steps {
		if step.Rule != "" {
			fmt.Printf("  %d. %s via rule %s\n", i+1, step.Operation, step.Rule)
		} else {
			fmt.Printf("  %d. %s\n", i+1, step.Operation)
		}
	}
	return nil
}

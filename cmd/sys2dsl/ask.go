package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sys2dsl/engine/pkg/engine"
)

var askCmd = &cobra.Command{
	Use:   "ask [operator] [args...]",
	Short: "Run a direct/indexed query and print whether it is found",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	s := newSession()
	result := s.Ask(args[0], args[1:], engine.Options{})
	fmt.Printf("found=%v existence=%s status=%s source=%s\n",
		result.Found, result.Existence, result.Status, result.Source)
	if result.Explanation != "" {
		fmt.Println(result.Explanation)
	}
	return nil
}

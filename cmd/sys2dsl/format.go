package main

import (
	"fmt"
	"strings"

	"github.com/sys2dsl/engine/pkg/session"
)

// bindingString renders an @name binding for CLI output, picking
// whichever field the producing statement actually set.
func bindingString(b session.Binding) string {
	switch {
	case b.Fact != nil:
		return fmt.Sprintf("%s(%s) [%s]", b.Fact.Operator, strings.Join(b.Fact.Args, ", "), b.Fact.Existence)
	case b.Query != nil:
		return fmt.Sprintf("found=%v existence=%s", b.Query.Found, b.Query.Existence)
	case b.Proof != nil:
		return fmt.Sprintf("valid=%v confidence=%.2f method=%s", b.Proof.Valid, b.Proof.Confidence, b.Proof.Method)
	default:
		return b.Value
	}
}

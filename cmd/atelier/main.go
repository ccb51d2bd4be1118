package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"atelier/internal/workflow"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		// Guard rejections (wrong status, wrong assignee, blocked gate) are
		// the operator picking the wrong action, not a failure of the tool.
		if workflow.IsUserCorrectable(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

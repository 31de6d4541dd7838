package cmd

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
)

var debugLog = logr.Discard()

func configureDebugLogger(cmd *cobra.Command) {
	if !debugOutput {
		debugLog = logr.Discard()
		return
	}
	stderr := cmd.ErrOrStderr()
	debugLog = funcr.New(func(prefix string, args string) {
		if prefix != "" {
			fmt.Fprintf(stderr, "[debug] %s: %s\n", prefix, args)
			return
		}
		fmt.Fprintf(stderr, "[debug] %s\n", args)
	}, funcr.Options{})
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/internal/cli/render"
	"github.com/stacklint/stacklint/refgraph"
	"github.com/stacklint/stacklint/schema"
	"github.com/stacklint/stacklint/template"
)

type handledError struct {
	msg string
}

func (handledError) handledMarker() {}

func (e handledError) Error() string {
	return e.msg
}

type handled interface {
	handledMarker()
}

func IsHandledError(err error) bool {
	if err == nil {
		return false
	}
	var h handled
	return errors.As(err, &h)
}

func usageError(cmd *cobra.Command, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "invalid command usage"
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())

	return handledError{msg: msg}
}

func configureOutputSettings(cmd *cobra.Command) {
	if noColorOutput {
		render.DisableColor()
	}
	configureDebugLogger(cmd)
}

func loadCatalog(path string) (*schema.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		catalog, err := schema.Default()
		if err != nil {
			return nil, err
		}
		debugLog.Info("using built-in schema catalog", "types", len(catalog.TypeNames()))
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read schema catalog: %w", err)
	}
	catalog, err := schema.Load(data)
	if err != nil {
		return nil, err
	}
	debugLog.Info("loaded schema catalog", "path", path, "types", len(catalog.TypeNames()))
	return catalog, nil
}

func loadTemplateGraph(path string) (*refgraph.Graph, []diag.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read template: %w", err)
	}

	root, err := template.Parse(data)
	if err != nil {
		return nil, nil, err
	}

	graph, structural := refgraph.Build(root)
	debugLog.Info("extracted reference graph",
		"resources", len(graph.Resources),
		"edges", len(graph.Edges),
		"structuralDiagnostics", len(structural),
	)
	return graph, structural, nil
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklint/stacklint/diag"
)

const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

type diagnosticWire struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

func diagnosticsToWire(diagnostics []diag.Diagnostic) []diagnosticWire {
	wire := make([]diagnosticWire, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		wire = append(wire, diagnosticWire{
			Severity: string(diagnostic.Severity),
			Code:     string(diagnostic.Code),
			Name:     diagnostic.Name,
			Path:     diagnostic.Path,
			Message:  diagnostic.Message,
		})
	}
	return wire
}

// Diagnostics writes the list in the requested format. The text form is the
// stable tab-separated contract; table and json are presentation variants.
func Diagnostics(w io.Writer, diagnostics []diag.Diagnostic, format string, query string) error {
	switch format {
	case FormatText, "":
		return diagnosticsText(w, diagnostics)
	case FormatTable:
		return diagnosticsTable(w, diagnostics)
	case FormatJSON:
		return diagnosticsJSON(w, diagnostics, query)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func diagnosticsText(w io.Writer, diagnostics []diag.Diagnostic) error {
	for _, diagnostic := range diagnostics {
		line := fmt.Sprintf("%s\t%s\t%s\t%s",
			severityLabel(diagnostic.Severity),
			diagnostic.Code,
			diagnostic.Path,
			diagnostic.Message,
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func severityLabel(severity diag.Severity) string {
	switch severity {
	case diag.SeverityError:
		return Red(string(severity))
	case diag.SeverityWarning:
		return Gold(string(severity))
	}
	return string(severity)
}

func diagnosticsTable(w io.Writer, diagnostics []diag.Diagnostic) error {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})))
	table.Header("Severity", "Code", "Path", "Message")

	data := make([][]any, len(diagnostics))
	for idx, diagnostic := range diagnostics {
		data[idx] = []any{
			severityLabel(diagnostic.Severity),
			string(diagnostic.Code),
			diagnostic.Path,
			diagnostic.Message,
		}
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error formatting diagnostics: %v", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering diagnostics: %v", err)
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func diagnosticsJSON(w io.Writer, diagnostics []diag.Diagnostic, query string) error {
	wire := diagnosticsToWire(diagnostics)
	if strings.TrimSpace(query) == "" {
		encoded, err := json.MarshalIndent(wire, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	// gojq operates on plain any values, so the wire form goes through one
	// marshal/unmarshal round.
	encoded, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(encoded, &input); err != nil {
		return err
	}

	iter := parsed.Run(input)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := value.(error); ok {
			return fmt.Errorf("query failed: %w", err)
		}
		line, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(line)); err != nil {
			return err
		}
	}
	return nil
}

package render

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/stacklint/stacklint/diag"
)

func sampleDiagnostics() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.Errorf(diag.DanglingReference, "Web", "Resources.Web.Properties.VpcId",
			"Ref target %q is not a declared resource, parameter, or mapping", "Vpc"),
		diag.Warningf(diag.UnusedParameter, "Extra", "Parameters.Extra",
			"parameter %q is declared but never referenced", "Extra"),
	}
}

func TestDiagnosticsText(t *testing.T) {
	DisableColor()

	var buf strings.Builder
	if err := Diagnostics(&buf, sampleDiagnostics(), FormatText, ""); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}

	want := "Error\tDanglingReference\tResources.Web.Properties.VpcId\tRef target \"Vpc\" is not a declared resource, parameter, or mapping\n" +
		"Warning\tUnusedParameter\tParameters.Extra\tparameter \"Extra\" is declared but never referenced\n"
	if buf.String() != want {
		t.Fatalf("unexpected text output:\n%q", buf.String())
	}
}

func TestDiagnosticsJSON(t *testing.T) {
	var buf strings.Builder
	if err := Diagnostics(&buf, sampleDiagnostics(), FormatJSON, ""); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}

	var decoded []diagnosticWire
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded))
	}
	if decoded[0].Code != "DanglingReference" || decoded[1].Severity != "Warning" {
		t.Fatalf("unexpected wire form: %+v", decoded)
	}
}

func TestDiagnosticsJSONQuery(t *testing.T) {
	var buf strings.Builder
	query := `.[] | select(.severity == "Error") | .code`
	if err := Diagnostics(&buf, sampleDiagnostics(), FormatJSON, query); err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `"DanglingReference"` {
		t.Fatalf("unexpected query output: %q", buf.String())
	}
}

func TestDiagnosticsRejectsUnknownFormat(t *testing.T) {
	var buf strings.Builder
	err := Diagnostics(&buf, sampleDiagnostics(), "csv", "")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestDiagnosticsRejectsInvalidQuery(t *testing.T) {
	var buf strings.Builder
	err := Diagnostics(&buf, sampleDiagnostics(), FormatJSON, ".[")
	if err == nil || !strings.Contains(err.Error(), "invalid query") {
		t.Fatalf("expected query error, got %v", err)
	}
}

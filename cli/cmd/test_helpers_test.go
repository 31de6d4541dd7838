package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	cli "github.com/stacklint/stacklint/cli/cmd"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return cli.NewRootCommand()
}

// runCommand executes the CLI end to end with color disabled so output
// assertions see the plain tab-separated form.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

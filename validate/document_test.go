package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stacklint/stacklint/diag"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func TestDocumentCleanStack(t *testing.T) {
	t.Parallel()

	diagnostics, err := Document(readFixture(t, "stack.yaml"), testCatalog(t))
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	if len(diagnostics) != 0 {
		lines := make([]string, 0, len(diagnostics))
		for _, diagnostic := range diagnostics {
			lines = append(lines, diagnostic.Line())
		}
		t.Fatalf("expected a clean run, got:\n%s", lines)
	}
}

func TestDocumentNonMappingRoot(t *testing.T) {
	t.Parallel()

	diagnostics, err := Document([]byte("just a string"), testCatalog(t))
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	if countCode(diagnostics, diag.MalformedSection) != 1 {
		t.Fatalf("expected one MalformedSection diagnostic, got %v", diagnostics)
	}
	if !diag.HasErrors(diagnostics) {
		t.Fatal("a non-mapping root must fail validation")
	}
}

func TestDocumentBrokenStack(t *testing.T) {
	t.Parallel()

	diagnostics, err := Document(readFixture(t, "broken.yaml"), testCatalog(t))
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}

	wantCounts := map[diag.Code]int{
		diag.UnusedParameter:      1,
		diag.PropertyKindMismatch: 1,
		diag.UnknownProperty:      1,
		diag.UnknownResourceType:  1,
		diag.DependencyCycle:      1,
		diag.DanglingReference:    1,
	}
	total := 0
	for code, want := range wantCounts {
		total += want
		if got := countCode(diagnostics, code); got != want {
			t.Fatalf("expected %d %s diagnostics, got %d: %v", want, code, got, diagnostics)
		}
	}
	if len(diagnostics) != total {
		t.Fatalf("expected %d diagnostics, got %d: %v", total, len(diagnostics), diagnostics)
	}
	if !diag.HasErrors(diagnostics) {
		t.Fatal("broken stack must carry errors")
	}
}

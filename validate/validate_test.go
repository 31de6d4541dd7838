package validate

import (
	"strings"
	"testing"

	"github.com/stacklint/stacklint/diag"
	"github.com/stacklint/stacklint/refgraph"
	"github.com/stacklint/stacklint/schema"
	"github.com/stacklint/stacklint/template"
)

func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()
	catalog, err := schema.Default()
	if err != nil {
		t.Fatalf("Default catalog returned error: %v", err)
	}
	return catalog
}

func analyze(t *testing.T, text string) []diag.Diagnostic {
	t.Helper()
	diagnostics, err := Document([]byte(text), testCatalog(t))
	if err != nil {
		t.Fatalf("Document returned error: %v", err)
	}
	return diagnostics
}

func codesOf(diagnostics []diag.Diagnostic) []diag.Code {
	codes := make([]diag.Code, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		codes = append(codes, diagnostic.Code)
	}
	return codes
}

func countCode(diagnostics []diag.Diagnostic, code diag.Code) int {
	count := 0
	for _, diagnostic := range diagnostics {
		if diagnostic.Code == code {
			count++
		}
	}
	return count
}

func TestCleanTemplateHasNoDiagnostics(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Parameters:
  SomeParam:
    Type: String
Resources:
  AppSecurityGroup:
    Type: AWS::EC2::SecurityGroup
    Properties:
      GroupDescription: app traffic
      VpcId: !Ref SomeParam
`)
	if len(diagnostics) != 0 {
		t.Fatalf("expected zero diagnostics, got %v", diagnostics)
	}
}

func TestNoCrossReferencesNeverDangles(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  Key:
    Type: AWS::KMS::Key
    Properties:
      Enabled: true
      PendingWindowInDays: 14
`)
	if count := countCode(diagnostics, diag.DanglingReference); count != 0 {
		t.Fatalf("template without references produced %d dangling diagnostics", count)
	}
}

func TestUnknownResourceTypeShortCircuits(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  Thing:
    Type: AWS::Bogus::Thing
    Properties:
      Whatever:
        - deeply:
            nested: true
`)
	if count := countCode(diagnostics, diag.UnknownResourceType); count != 1 {
		t.Fatalf("expected exactly one UnknownResourceType, got %v", codesOf(diagnostics))
	}
	if count := countCode(diagnostics, diag.PropertyKindMismatch); count != 0 {
		t.Fatalf("property checks must not run for unknown types: %v", codesOf(diagnostics))
	}
	if count := countCode(diagnostics, diag.UnknownProperty); count != 0 {
		t.Fatalf("property checks must not run for unknown types: %v", codesOf(diagnostics))
	}
}

func TestUnknownProperty(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  Eip:
    Type: AWS::EC2::EIP
    Properties:
      Domain: vpc
      NoSuchProperty: 1
`)
	if count := countCode(diagnostics, diag.UnknownProperty); count != 1 {
		t.Fatalf("expected one UnknownProperty, got %v", diagnostics)
	}
}

func TestPropertyKindMismatch(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  Web:
    Type: AWS::EC2::Instance
    Properties:
      ImageId:
        - not
        - a
        - scalar
      Monitoring: sometimes
      SecurityGroupIds: sg-123
      Tags:
        - Key: Name
          Value: web
          Extra: nope
`)

	if count := countCode(diagnostics, diag.PropertyKindMismatch); count != 3 {
		t.Fatalf("expected three kind mismatches, got %v", diagnostics)
	}
	if count := countCode(diagnostics, diag.UnknownProperty); count != 1 {
		t.Fatalf("expected one unknown nested property, got %v", diagnostics)
	}
}

func TestFunctionNodesAreKindCompatible(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Parameters:
  Ids:
    Type: CommaDelimitedList
Resources:
  Web:
    Type: AWS::EC2::Instance
    Properties:
      SecurityGroupIds: !Ref Ids
      Monitoring: !ImportValue shared-flag
`)
	if count := countCode(diagnostics, diag.PropertyKindMismatch); count != 0 {
		t.Fatalf("function nodes must be kind-compatible, got %v", diagnostics)
	}
}

func TestDanglingReferenceCountMatchesUnresolvedEdges(t *testing.T) {
	t.Parallel()

	text := `
Resources:
  Web:
    Type: AWS::EC2::Instance
    Properties:
      SubnetId: !Ref MissingSubnet
      ImageId: !FindInMap [MissingMap, a, b]
      KeyName: !GetAtt MissingThing.Arn
`
	root, err := template.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	graph, structural := refgraph.Build(root)
	diagnostics := Run(graph, structural, testCatalog(t))

	unresolved := 0
	declared := map[string]struct{}{"Web": {}}
	for _, edge := range graph.Edges {
		if edge.To == refgraph.ExternalTarget || refgraph.IsPseudoParameter(edge.To) {
			continue
		}
		if _, found := declared[edge.To]; !found {
			unresolved++
		}
	}

	if count := countCode(diagnostics, diag.DanglingReference); count != unresolved {
		t.Fatalf("expected %d dangling diagnostics, got %d: %v", unresolved, countCode(diagnostics, diag.DanglingReference), diagnostics)
	}
	if countCode(diagnostics, diag.DanglingReference) != 3 {
		t.Fatalf("expected 3 dangling references, got %v", diagnostics)
	}
}

func TestDependencyCycleReportedOnce(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  A:
    Type: AWS::EC2::EIP
    Properties:
      InstanceId: !Ref B
  B:
    Type: AWS::EC2::EIP
    Properties:
      InstanceId: !Ref A
`)

	if count := countCode(diagnostics, diag.DependencyCycle); count != 1 {
		t.Fatalf("expected exactly one DependencyCycle, got %v", diagnostics)
	}
	for _, diagnostic := range diagnostics {
		if diagnostic.Code != diag.DependencyCycle {
			continue
		}
		if !strings.Contains(diagnostic.Message, "A") || !strings.Contains(diagnostic.Message, "B") {
			t.Fatalf("cycle message must name both members: %q", diagnostic.Message)
		}
	}
}

func TestSelfReferenceIsACycle(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  A:
    Type: AWS::EC2::EIP
    Properties:
      InstanceId: !Ref A
`)
	if count := countCode(diagnostics, diag.DependencyCycle); count != 1 {
		t.Fatalf("expected one DependencyCycle for a self reference, got %v", diagnostics)
	}
}

func TestUnusedParameterWarning(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Parameters:
  Unused:
    Type: String
Resources:
  Eip:
    Type: AWS::EC2::EIP
    Properties:
      Domain: vpc
`)

	if len(diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", diagnostics)
	}
	got := diagnostics[0]
	if got.Code != diag.UnusedParameter || got.Severity != diag.SeverityWarning || got.Name != "Unused" {
		t.Fatalf("unexpected diagnostic: %#v", got)
	}
}

func TestParameterReferencedFromOutputIsUsed(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Parameters:
  Stage:
    Type: String
Resources:
  Eip:
    Type: AWS::EC2::EIP
Outputs:
  StageName:
    Value: !Ref Stage
`)
	if count := countCode(diagnostics, diag.UnusedParameter); count != 0 {
		t.Fatalf("parameter referenced from an output is used, got %v", diagnostics)
	}
}

func TestDuplicateNameAcrossNamespaces(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Parameters:
  Web:
    Type: String
Resources:
  Web:
    Type: AWS::EC2::EIP
    Properties:
      Domain: !Ref Web
`)
	if count := countCode(diagnostics, diag.DuplicateName); count != 1 {
		t.Fatalf("expected one DuplicateName, got %v", diagnostics)
	}
}

func TestGetAttAttributeChecked(t *testing.T) {
	t.Parallel()

	diagnostics := analyze(t, `
Resources:
  Sg:
    Type: AWS::EC2::SecurityGroup
    Properties:
      GroupDescription: x
Outputs:
  Bad:
    Value: !GetAtt Sg.NoSuchAttribute
  Good:
    Value: !GetAtt Sg.GroupId
`)
	if count := countCode(diagnostics, diag.UnknownProperty); count != 1 {
		t.Fatalf("expected one unknown attribute diagnostic, got %v", diagnostics)
	}
}

func TestDiagnosticsAreOrderedAndIdempotent(t *testing.T) {
	t.Parallel()

	text := `
Parameters:
  Unused:
    Type: String
Resources:
  Zebra:
    Type: AWS::Bogus::Zebra
  Alpha:
    Type: AWS::Bogus::Alpha
Outputs:
  Out:
    Value: !Ref Missing
`
	root, err := template.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	graph, structural := refgraph.Build(root)

	first := Run(graph, structural, testCatalog(t))
	second := Run(graph, structural, testCatalog(t))

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %v vs %v", first, second)
	}
	for idx := range first {
		if first[idx] != second[idx] {
			t.Fatalf("runs disagree at %d: %v vs %v", idx, first[idx], second[idx])
		}
	}

	var lines []string
	for _, diagnostic := range first {
		lines = append(lines, diagnostic.Line())
	}
	want := []string{
		"Warning\tUnusedParameter\tParameters.Unused\tparameter \"Unused\" is declared but never referenced",
		"Error\tUnknownResourceType\tResources.Alpha.Type\tresource type \"AWS::Bogus::Alpha\" is not in the schema catalog",
		"Error\tUnknownResourceType\tResources.Zebra.Type\tresource type \"AWS::Bogus::Zebra\" is not in the schema catalog",
		"Error\tDanglingReference\tOutputs.Out.Value\tRef target \"Missing\" is not a declared resource, parameter, or mapping",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected diagnostics:\n%s", strings.Join(lines, "\n"))
	}
	for idx := range want {
		if lines[idx] != want[idx] {
			t.Fatalf("line %d:\n got %q\nwant %q", idx, lines[idx], want[idx])
		}
	}
}

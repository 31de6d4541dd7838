package diag

import (
	"fmt"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
)

type Code string

const (
	UnknownResourceType  Code = "UnknownResourceType"
	UnknownProperty      Code = "UnknownProperty"
	PropertyKindMismatch Code = "PropertyKindMismatch"
	DanglingReference    Code = "DanglingReference"
	DependencyCycle      Code = "DependencyCycle"
	DuplicateName        Code = "DuplicateName"
	UnusedParameter      Code = "UnusedParameter"
	InvalidFunctionUsage Code = "InvalidFunctionUsage"
	UnknownSection       Code = "UnknownSection"
	MalformedSection     Code = "MalformedSection"
)

// Diagnostic is a single reported issue. Name is the logical name the issue
// refers to; Path locates it inside the template (dotted segments).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Name     string
	Path     string
	Message  string
}

// Line renders the stable single-line form: severity, code, path, and message
// separated by tabs.
func (d Diagnostic) Line() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", d.Severity, d.Code, d.Path, d.Message)
}

func Errorf(code Code, name string, path string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Name:     name,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	}
}

func Warningf(code Code, name string, path string, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Name:     name,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	}
}

// HasErrors reports whether any diagnostic carries Error severity; warnings
// alone never fail a run.
func HasErrors(diagnostics []Diagnostic) bool {
	for _, diagnostic := range diagnostics {
		if diagnostic.Severity == SeverityError {
			return true
		}
	}
	return false
}

var sectionRanks = map[string]int{
	"Parameters": 0,
	"Mappings":   1,
	"Resources":  2,
	"Outputs":    3,
}

func sectionRank(path string) int {
	section, _, _ := strings.Cut(path, ".")
	if rank, found := sectionRanks[section]; found {
		return rank
	}
	return len(sectionRanks)
}

// Sort orders diagnostics by section, then logical name, then path. The order
// is deterministic for a given input tree regardless of accumulation order.
func Sort(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		left, right := diagnostics[i], diagnostics[j]
		leftRank, rightRank := sectionRank(left.Path), sectionRank(right.Path)
		if leftRank != rightRank {
			return leftRank < rightRank
		}
		if left.Name != right.Name {
			return left.Name < right.Name
		}
		if left.Path != right.Path {
			return left.Path < right.Path
		}
		return left.Code < right.Code
	})
}

package schema

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
	"go.yaml.in/yaml/v3"

	"github.com/stacklint/stacklint/faults"
)

// versionConstraint gates the catalog document format the loader understands.
const versionConstraint = "^1"

type Entry struct {
	Type       string
	Properties map[string]PropertyKind
	Attributes []string
}

func (e Entry) HasAttributeData() bool {
	return len(e.Attributes) > 0
}

func (e Entry) HasAttribute(name string) bool {
	for _, attribute := range e.Attributes {
		if attribute == name {
			return true
		}
	}
	return false
}

func (e Entry) PropertyNames() []string {
	names := make([]string, 0, len(e.Properties))
	for name := range e.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog is immutable once loaded and safe for concurrent readers.
type Catalog struct {
	version     string
	types       map[string]Entry
	definitions map[string]Entry
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) Lookup(resourceType string) (Entry, bool) {
	entry, found := c.types[resourceType]
	return entry, found
}

func (c *Catalog) Definition(name string) (Entry, bool) {
	entry, found := c.definitions[name]
	return entry, found
}

func (c *Catalog) TypeNames() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type catalogWire struct {
	Version     string               `yaml:"version" json:"version"`
	Types       map[string]entryWire `yaml:"types" json:"types"`
	Definitions map[string]entryWire `yaml:"definitions,omitempty" json:"definitions,omitempty"`
}

type entryWire struct {
	Properties map[string]string `yaml:"properties" json:"properties"`
	Attributes []string          `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Load parses a catalog document. YAML and JSON are accepted directly; JSON
// with comments is normalized through jsonc first.
func Load(data []byte) (*Catalog, error) {
	text := bytes.TrimSpace(data)
	if len(text) > 0 && text[0] == '{' {
		text = jsonc.ToJSON(text)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(text))
	decoder.KnownFields(true)

	wire := catalogWire{}
	if err := decoder.Decode(&wire); err != nil {
		return nil, faults.NewTypedError(faults.CatalogError, "catalog document cannot be decoded", err)
	}

	if err := checkVersion(wire.Version); err != nil {
		return nil, err
	}

	catalog := &Catalog{
		version:     wire.Version,
		types:       make(map[string]Entry, len(wire.Types)),
		definitions: make(map[string]Entry, len(wire.Definitions)),
	}

	for name, entry := range wire.Definitions {
		decoded, err := decodeEntry(name, entry)
		if err != nil {
			return nil, err
		}
		catalog.definitions[name] = decoded
	}
	for name, entry := range wire.Types {
		decoded, err := decodeEntry(name, entry)
		if err != nil {
			return nil, err
		}
		catalog.types[name] = decoded
	}

	if err := catalog.checkObjectReferences(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func checkVersion(version string) error {
	if version == "" {
		return nil
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return faults.NewTypedError(faults.CatalogError, fmt.Sprintf("catalog version %q is not semantic", version), err)
	}
	constraint, err := semver.NewConstraint(versionConstraint)
	if err != nil {
		return faults.NewTypedError(faults.InternalError, "invalid version constraint", err)
	}
	if !constraint.Check(parsed) {
		return faults.NewTypedError(
			faults.CatalogError,
			fmt.Sprintf("catalog version %s is outside the supported range %s", version, versionConstraint),
			nil,
		)
	}
	return nil
}

func decodeEntry(name string, wire entryWire) (Entry, error) {
	entry := Entry{
		Type:       name,
		Properties: make(map[string]PropertyKind, len(wire.Properties)),
	}
	for property, kindText := range wire.Properties {
		kind, err := ParseKind(kindText)
		if err != nil {
			return Entry{}, faults.NewTypedError(
				faults.CatalogError,
				fmt.Sprintf("%s.%s: %s", name, property, err.Error()),
				nil,
			)
		}
		entry.Properties[property] = kind
	}
	if len(wire.Attributes) > 0 {
		entry.Attributes = append([]string(nil), wire.Attributes...)
		sort.Strings(entry.Attributes)
	}
	return entry, nil
}

func (c *Catalog) checkObjectReferences() error {
	check := func(owner string, kind PropertyKind) error {
		for current := &kind; current != nil; current = current.Elem {
			if current.Class == ClassObject {
				if _, found := c.definitions[current.Object]; !found {
					return faults.NewTypedError(
						faults.CatalogError,
						fmt.Sprintf("%s references undefined object %q", owner, current.Object),
						nil,
					)
				}
			}
		}
		return nil
	}

	for name, entry := range c.types {
		for property, kind := range entry.Properties {
			if err := check(name+"."+property, kind); err != nil {
				return err
			}
		}
	}
	for name, entry := range c.definitions {
		for property, kind := range entry.Properties {
			if err := check(name+"."+property, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

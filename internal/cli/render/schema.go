package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stacklint/stacklint/schema"
)

func SchemaTypeList(w io.Writer, catalog *schema.Catalog) error {
	for _, name := range catalog.TypeNames() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func SchemaEntry(w io.Writer, entry schema.Entry) error {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})))
	table.Header("Property", "Kind")

	names := entry.PropertyNames()
	data := make([][]any, len(names))
	for idx, name := range names {
		data[idx] = []any{name, entry.Properties[name].String()}
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error formatting schema entry: %v", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering schema entry: %v", err)
	}

	if _, err := fmt.Fprintf(w, "%s\n%s", LightBlue(entry.Type), buf.String()); err != nil {
		return err
	}
	if entry.HasAttributeData() {
		_, err := fmt.Fprintf(w, "Attributes: %s\n", strings.Join(entry.Attributes, ", "))
		return err
	}
	return nil
}

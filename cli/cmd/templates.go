package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Templates lists the templates and conditional maps of the catalogs.
type Templates struct {
	Bodies bool `help:"Print each template's body" short:"b"`
}

// Run executes the templates command.
func (t *Templates) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	binder, err := newBinder(ctx)
	if err != nil {
		return err
	}

	reg := binder.Registry()
	w := outputFrom(ctx)

	ids := reg.TemplateIDs()

	width := 0
	for _, id := range ids {
		width = max(width, len(id))
	}

	for _, id := range ids {
		if !t.Bodies {
			fmt.Fprintln(w, id)

			continue
		}

		body, _ := reg.Template(id)
		fmt.Fprintf(w, "%-*s  %s\n", width, id, body)
	}

	for _, id := range reg.ConditionalIDs() {
		m, _ := reg.ConditionalsMap(id)

		selector := m.Field
		if m.Expr != "" {
			selector = m.Expr
		}

		if !t.Bodies {
			fmt.Fprintf(w, "%s (conditional)\n", id)

			continue
		}

		fmt.Fprintf(w, "%-*s  ? %s -> %s\n", width, id, selector, formatValues(m.Values, m.Default))
	}

	return nil
}

func formatValues(values map[string]string, def string) string {
	parts := make([]string, 0, len(values)+1)

	for _, k := range slices.Sorted(maps.Keys(values)) {
		parts = append(parts, k+":"+values[k])
	}

	if def != "" {
		parts = append(parts, "*:"+def)
	}

	return strings.Join(parts, " ")
}

package realize

import (
	"github.com/jzbor/zinn/internal/template"
	"github.com/jzbor/zinn/internal/zinnfile"
)

// RenderConstants renders the Zinnfile's ordered `constants` mapping,
// inserting each rendered value under its name before the next constant is
// rendered (spec §6). overrides are applied after rendering, appending new
// constants or replacing existing ones verbatim (CLI `--override-const`),
// matching the CLI table's "Append/override a constant" semantics.
func RenderConstants(reg *template.Registry, ordered zinnfile.OrderedConstants, overrides map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(ordered)+len(overrides))

	for _, pair := range ordered {
		rendered, err := reg.Render([]string{"constants", pair.Name}, pair.Value, out)
		if err != nil {
			return nil, err
		}
		out[pair.Name] = rendered
	}

	for name, value := range overrides {
		out[name] = value
	}

	return out, nil
}

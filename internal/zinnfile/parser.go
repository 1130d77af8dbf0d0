package zinnfile

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/jzbor/zinn/internal/zinnerr"
)

const maxZinnfileSizeBytes = 4 * 1024 * 1024

// Load reads and strictly parses a Zinnfile from path. Unknown top-level or
// job-level keys are rejected, matching spec §6's "strict" schema.
func Load(path string) (*Zinnfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("%w: %s", zinnerr.ErrFile, err)
	}

	if len(data) > maxZinnfileSizeBytes {
		return nil, fmt.Errorf("%w: zinnfile exceeds %d bytes", zinnerr.ErrFile, maxZinnfileSizeBytes)
	}

	var zf Zinnfile
	if err := yaml.UnmarshalWithOptions(data, &zf, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s", zinnerr.ErrYAML, err)
	}

	if zf.Jobs == nil {
		zf.Jobs = map[string]*JobDescription{}
	}
	if zf.Nix != nil && zf.Nix.Nixpkgs == "" {
		zf.Nix.Nixpkgs = DefaultNixpkgs
	}

	return &zf, nil
}

// Package zinnfile holds the YAML data model for a Zinnfile: constants,
// job descriptions, dependency specs, and the optional nix block.
package zinnfile

// Zinnfile is the top-level document.
type Zinnfile struct {
	Constants OrderedConstants    `yaml:"constants"`
	Jobs      map[string]*JobDescription `yaml:"jobs"`
	Nix       *NixConfig          `yaml:"nix,omitempty"`
}

// NixConfig describes the optional Nix shell wrapper.
type NixConfig struct {
	Nixpkgs  string   `yaml:"nixpkgs,omitempty"`
	Packages []string `yaml:"packages"`
}

// DefaultNixpkgs is used when a Zinnfile's nix block omits nixpkgs.
const DefaultNixpkgs = "nixpkgs"

// JobDescription is a job template as written in the Zinnfile. Every field
// has the zero-value default called out in spec §6: run="", requires=[],
// args=[], defaults={}, inputs=nil, input_list=[], outputs=nil,
// output_list=[], interactive=false.
type JobDescription struct {
	Run         string            `yaml:"run,omitempty"`
	Requires    []DependencySpec  `yaml:"requires,omitempty"`
	Args        []string          `yaml:"args,omitempty"`
	Defaults    map[string]string `yaml:"defaults,omitempty"`
	Inputs      *string           `yaml:"inputs,omitempty"`
	InputList   []string          `yaml:"input_list,omitempty"`
	Outputs     *string           `yaml:"outputs,omitempty"`
	OutputList  []string          `yaml:"output_list,omitempty"`
	Interactive bool              `yaml:"interactive,omitempty"`
}

// DependencySpec names a required job, the parameters passed to it, and an
// optional foreach fan-out.
type DependencySpec struct {
	Job     string            `yaml:"job"`
	With    map[string]string `yaml:"with,omitempty"`
	Foreach *ForeachSpec      `yaml:"foreach,omitempty"`
}

// ForeachSpec binds Var to each whitespace-separated token that In renders to.
type ForeachSpec struct {
	Var string `yaml:"var"`
	In  string `yaml:"in"`
}

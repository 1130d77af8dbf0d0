package realize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jzbor/zinn/internal/template"
	"github.com/jzbor/zinn/internal/zinnerr"
	"github.com/jzbor/zinn/internal/zinnfile"
)

// Realizer recursively instantiates job templates into RealizedJob DAGs,
// caching template compilation (not job results) via the shared Registry
// (spec §4.2).
type Realizer struct {
	jobs      map[string]*zinnfile.JobDescription
	constants map[string]string
	registry  *template.Registry
}

// NewRealizer builds a Realizer over the Zinnfile's job table and
// already-rendered constants.
func NewRealizer(jobs map[string]*zinnfile.JobDescription, constants map[string]string, registry *template.Registry) *Realizer {
	return &Realizer{jobs: jobs, constants: constants, registry: registry}
}

// Realize instantiates the named job with the given supplied parameters,
// recursively realizing its dependency tree first (spec §4.2 steps 1-5).
func (r *Realizer) Realize(name string, params map[string]string) (*Job, error) {
	desc, ok := r.jobs[name]
	if !ok {
		return nil, zinnerr.NewJobNotFound(name)
	}

	ctx := make(map[string]string, len(r.constants)+len(desc.Args))
	for k, v := range r.constants {
		ctx[k] = v
	}

	paramValues := make([]string, 0, len(desc.Args))
	for _, arg := range desc.Args {
		value, ok := params[arg]
		if !ok {
			value, ok = desc.Defaults[arg]
		}
		if !ok {
			return nil, zinnerr.NewMissingArgument(arg)
		}
		ctx[arg] = value
		paramValues = append(paramValues, value)
	}

	inputs, err := r.renderFileList(name, "inputs", "input-list", desc.Inputs, desc.InputList, ctx)
	if err != nil {
		return nil, err
	}
	outputs, err := r.renderFileList(name, "outputs", "output-list", desc.Outputs, desc.OutputList, ctx)
	if err != nil {
		return nil, err
	}

	deps := make([]*Job, 0, len(desc.Requires))
	for i, dep := range desc.Requires {
		realized, err := r.realizeDependency(name, i, dep, ctx)
		if err != nil {
			return nil, err
		}
		deps = append(deps, realized...)
	}

	run, err := r.registry.Render([]string{"jobs", name, "run"}, desc.Run, ctx)
	if err != nil {
		return nil, err
	}

	return newJob(name, paramValues, run, deps, inputs, outputs, desc.Interactive), nil
}

// renderFileList renders a whitespace-separated declaration followed by an
// ordered list declaration into a single ordered list of paths (spec §4.2
// step 2: inputs/input_list, symmetrically outputs/output_list).
func (r *Realizer) renderFileList(job, whitespaceField, listField string, whitespace *string, list []string, ctx map[string]string) ([]string, error) {
	var out []string

	if whitespace != nil {
		rendered, err := r.registry.Render([]string{"jobs", job, whitespaceField}, *whitespace, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.Fields(rendered)...)
	}

	for i, entry := range list {
		rendered, err := r.registry.Render([]string{"jobs", job, listField, strconv.Itoa(i)}, entry, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, rendered)
	}

	return out, nil
}

// realizeDependency renders one `requires` entry, expanding foreach fan-out
// into one realization per whitespace-separated token (spec §4.2 step 3).
func (r *Realizer) realizeDependency(job string, index int, dep zinnfile.DependencySpec, parentCtx map[string]string) ([]*Job, error) {
	childParams := make(map[string]string, len(dep.With))
	for key, value := range dep.With {
		rendered, err := r.registry.Render([]string{"jobs", job, "requires", strconv.Itoa(index), key}, value, parentCtx)
		if err != nil {
			return nil, err
		}
		childParams[key] = rendered
	}

	if _, ok := r.jobs[dep.Job]; !ok {
		return nil, zinnerr.NewDependencyNotFound(dep.Job)
	}

	if dep.Foreach == nil {
		child, err := r.Realize(dep.Job, childParams)
		if err != nil {
			return nil, err
		}
		return []*Job{child}, nil
	}

	rendered, err := r.registry.Render([]string{"jobs", job, "requires", strconv.Itoa(index), "foreach"}, dep.Foreach.In, parentCtx)
	if err != nil {
		return nil, err
	}

	elements := strings.Fields(rendered)
	out := make([]*Job, 0, len(elements))
	for _, element := range elements {
		iterParams := make(map[string]string, len(childParams)+1)
		for k, v := range childParams {
			iterParams[k] = v
		}
		iterParams[dep.Foreach.Var] = element

		child, err := r.Realize(dep.Job, iterParams)
		if err != nil {
			return nil, fmt.Errorf("foreach %s=%q: %w", dep.Foreach.Var, element, err)
		}
		out = append(out, child)
	}
	return out, nil
}

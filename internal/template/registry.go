// Package template wraps a Handlebars-style rendering engine
// (github.com/aymerick/raymond) behind the path-addressed, caching
// registry spec §4.1 describes: every render goes through a
// component-qualified path, compiled once and reused thereafter.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/jzbor/zinn/internal/zinnerr"
)

// pathSeparator joins path components into a template name. It is the
// character §4.1 forbids inside any single component.
const pathSeparator = ":"

// Registry caches compiled templates by path and renders them against a
// string->string context. It is safe for concurrent use, though in
// practice realization runs single-threaded on the orchestrator before
// any worker starts (spec §5).
type Registry struct {
	mu        sync.Mutex
	compiled  map[string]*raymond.Template
	withRegex bool
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithRegexHelpers enables the `re` and `lst-re` helpers. They are
// feature-gated per §4.1 ("optional; feature-gated"); raymond has no
// conditional-compilation hook, so the gate is a constructor flag
// instead of a Go build tag.
func WithRegexHelpers() Option {
	return func(r *Registry) { r.withRegex = true }
}

// NewRegistry builds a Registry with the mandatory helper set already
// registered on every template it compiles.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{compiled: make(map[string]*raymond.Template)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path joins path components with the reserved separator, rejecting any
// component that contains it.
func Path(components ...string) (string, error) {
	for _, c := range components {
		if strings.Contains(c, pathSeparator) {
			return "", zinnerr.NewColonInTemplateName(c)
		}
	}
	return strings.Join(components, pathSeparator), nil
}

// Render compiles (or reuses a cached compilation of) the template named by
// path's components and renders it against ctx in strict mode: any
// variable reference absent from ctx — whether interpolated directly or
// passed as a helper argument — is a Template error.
func (r *Registry) Render(components []string, source string, ctx map[string]string) (string, error) {
	name, err := Path(components...)
	if err != nil {
		return "", err
	}

	tmpl, err := r.compile(name, source)
	if err != nil {
		return "", err
	}

	if missing := firstMissingVariable(source, ctx); missing != "" {
		return "", fmt.Errorf("%w: undefined variable %q in %s", zinnerr.ErrTemplate, missing, name)
	}

	out, err := tmpl.Exec(safeContext(ctx))
	if err != nil {
		if errors.Is(err, zinnerr.ErrRegex) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", zinnerr.ErrTemplate, err)
	}
	return out, nil
}

func (r *Registry) compile(name, source string) (*raymond.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.compiled[name]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", zinnerr.ErrTemplate, err)
	}
	registerHelpers(tmpl, r.withRegex)

	r.compiled[name] = tmpl
	return tmpl, nil
}

// safeContext wraps every value as a raymond.SafeString so interpolation
// never HTML-escapes shell-relevant characters, matching §4.1's "no HTML
// escaping" requirement.
func safeContext(ctx map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = raymond.SafeString(v)
	}
	return out
}

// mustacheExpr matches one `{{...}}` expression's inner content (no nested
// braces are expected in this template language).
var mustacheExpr = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// exprToken matches one space-separated token inside a mustache expression:
// either a double-quoted string literal or a bare identifier/path.
var exprToken = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|[^\s"]+`)

// identifier matches a bare variable name (no dots — path expressions are
// out of scope for strict-mode checking, same limitation as before).
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// firstMissingVariable reports the first context variable referenced
// anywhere inside a `{{...}}` expression — whether interpolated directly
// (`{{name}}`) or passed as a helper argument (`{{cat name "x"}}`) — that
// is absent from ctx. Block/partial/comment expressions (`{{#...}}`,
// `{{/...}}`, `{{>...}}`, `{{!...}}`) are skipped: this template language
// has no block helpers, so such syntax is not a variable reference at all.
func firstMissingVariable(source string, ctx map[string]string) string {
	for _, exprMatch := range mustacheExpr.FindAllStringSubmatch(source, -1) {
		expr := exprMatch[1]
		if expr == "" {
			continue
		}
		if strings.IndexByte("#/!>&", expr[0]) >= 0 {
			continue
		}

		tokens := exprToken.FindAllString(expr, -1)
		for i, tok := range tokens {
			if tok == "" || tok[0] == '"' {
				continue // string literal
			}
			if i == 0 && len(tokens) > 1 {
				continue // helper/partial name, not a variable reference
			}
			if strings.Contains(tok, ".") || !identifier.MatchString(tok) {
				continue // path expressions are out of scope for strict-mode checking
			}
			if _, ok := ctx[tok]; !ok {
				return tok
			}
		}
	}
	return ""
}

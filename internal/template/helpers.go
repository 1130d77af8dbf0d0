package template

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/jzbor/zinn/internal/zinnerr"
)

// registerHelpers installs the custom helper set on tmpl so every render
// through the Registry sees the same behavior regardless of compilation
// order. Helpers are registered per-template (not process-globally) so
// multiple Registry instances with different withRegex settings can
// coexist without clobbering each other.
func registerHelpers(tmpl *raymond.Template, withRegex bool) {
	tmpl.RegisterHelper("cat", helperCat)
	tmpl.RegisterHelper("joinlines", helperJoinlines)
	tmpl.RegisterHelper("shell", helperShell)
	tmpl.RegisterHelper("subst", helperSubst)
	tmpl.RegisterHelper("lst", helperLst)
	tmpl.RegisterHelper("lst-prefix", helperLstPrefix)
	tmpl.RegisterHelper("lst-suffix", helperLstSuffix)
	tmpl.RegisterHelper("lst-without", helperLstWithout)

	if withRegex {
		tmpl.RegisterHelper("re", helperRe)
		tmpl.RegisterHelper("lst-re", helperLstRe)
	}
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(raymond.SafeString); ok {
		return string(s)
	}
	return fmt.Sprint(v)
}

func splitNonEmpty(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	out = append(out, fields...)
	return out
}

// cat concatenates all arguments verbatim.
func helperCat(params ...interface{}) raymond.SafeString {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(str(p))
	}
	return raymond.SafeString(b.String())
}

// joinlines replaces each newline with a single space.
func helperJoinlines(base interface{}) raymond.SafeString {
	return raymond.SafeString(strings.ReplaceAll(str(base), "\n", " "))
}

// shell joins its arguments with spaces, invokes `sh -c`, and returns
// stdout with a single trailing newline trimmed.
func helperShell(params ...interface{}) (raymond.SafeString, error) {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = str(p)
	}
	cmd := exec.Command("sh", "-c", strings.Join(parts, " ")) //nolint:gosec // zinnfile authors are trusted
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("shell helper: %w", err)
	}
	return raymond.SafeString(strings.TrimSuffix(string(out), "\n")), nil
}

// subst replaces all literal occurrences of pattern with replacement in base.
func helperSubst(base, pattern, replacement interface{}) raymond.SafeString {
	return raymond.SafeString(strings.ReplaceAll(str(base), str(pattern), str(replacement)))
}

// lst parses each argument as whitespace-separated tokens, drops empties,
// and re-emits the concatenation as a single space-joined list.
func helperLst(params ...interface{}) raymond.SafeString {
	var tokens []string
	for _, p := range params {
		tokens = append(tokens, splitNonEmpty(str(p))...)
	}
	return raymond.SafeString(strings.Join(tokens, " "))
}

// lst-prefix prepends prefix to every token of list.
func helperLstPrefix(prefix, list interface{}) raymond.SafeString {
	p := str(prefix)
	tokens := splitNonEmpty(str(list))
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = p + t
	}
	return raymond.SafeString(strings.Join(out, " "))
}

// lst-suffix appends suffix to every token of list.
func helperLstSuffix(suffix, list interface{}) raymond.SafeString {
	s := str(suffix)
	tokens := splitNonEmpty(str(list))
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t + s
	}
	return raymond.SafeString(strings.Join(out, " "))
}

// lst-without removes any token of list that exactly matches one of items.
func helperLstWithout(list interface{}, items ...interface{}) raymond.SafeString {
	remove := make(map[string]struct{}, len(items))
	for _, it := range items {
		remove[str(it)] = struct{}{}
	}

	var out []string
	for _, t := range splitNonEmpty(str(list)) {
		if _, skip := remove[t]; !skip {
			out = append(out, t)
		}
	}
	return raymond.SafeString(strings.Join(out, " "))
}

// re applies a regex replace-all to base.
func helperRe(base, pattern, replacement interface{}) (raymond.SafeString, error) {
	re, err := regexp.Compile(str(pattern))
	if err != nil {
		return "", fmt.Errorf("%w: re helper: %s", zinnerr.ErrRegex, err)
	}
	return raymond.SafeString(re.ReplaceAllString(str(base), str(replacement))), nil
}

// lst-re applies a regex replace-all to each element of a list.
func helperLstRe(list, pattern, replacement interface{}) (raymond.SafeString, error) {
	re, err := regexp.Compile(str(pattern))
	if err != nil {
		return "", fmt.Errorf("%w: lst-re helper: %s", zinnerr.ErrRegex, err)
	}
	repl := str(replacement)

	tokens := splitNonEmpty(str(list))
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = re.ReplaceAllString(t, repl)
	}
	return raymond.SafeString(strings.Join(out, " ")), nil
}

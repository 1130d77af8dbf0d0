// Package zinnerr collects the error kinds raised across realization,
// scheduling, and execution so callers can match on them with errors.Is/As
// instead of string-sniffing messages.
package zinnerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", Err...) to attach context;
// callers match with errors.Is.
var (
	ErrFile               = errors.New("file error")
	ErrYAML               = errors.New("yaml parsing error")
	ErrTemplate           = errors.New("template error")
	ErrRegex              = errors.New("regex error")
	ErrChdir              = errors.New("chdir error")
	ErrJobNotFound        = errors.New("job not found")
	ErrDependencyNotFound = errors.New("dependency not found")
	ErrMissingArgument    = errors.New("missing argument")
	ErrColonInTemplateName = errors.New("colon in template name")
	ErrInputFile          = errors.New("input file error")
	ErrOutputFile         = errors.New("output file error")
	ErrChildSignaled      = errors.New("child terminated by signal")
)

// ChildFailedError reports a non-zero exit code from a job's shell script.
// Kept as a concrete type (rather than a sentinel) because the code is
// part of the error's identity, not just context.
type ChildFailedError struct {
	Code int
}

func (e *ChildFailedError) Error() string {
	return fmt.Sprintf("child exited with code %d", e.Code)
}

// NewMissingArgument builds a MissingArgument("name") style error.
func NewMissingArgument(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingArgument, name)
}

// NewDependencyNotFound builds a DependencyNotFound("name") style error.
func NewDependencyNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrDependencyNotFound, name)
}

// NewJobNotFound builds a JobNotFound("name") style error.
func NewJobNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrJobNotFound, name)
}

// NewColonInTemplateName flags a path component containing the registry's
// reserved path separator.
func NewColonInTemplateName(component string) error {
	return fmt.Errorf("%w: %q", ErrColonInTemplateName, component)
}

// NewInputFileError reports a missing input file.
func NewInputFileError(path string) error {
	return fmt.Errorf("%w: %q does not exist", ErrInputFile, path)
}

// NewOutputFileError reports a missing output file after a successful run.
func NewOutputFileError(path string) error {
	return fmt.Errorf("%w: %q does not exist", ErrOutputFile, path)
}

// Package realize turns Zinnfile job templates into a concrete,
// hash-identified DAG of fully-rendered jobs (spec §4.2).
package realize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Job is an immutable, fully-rendered job. Two independent realizations of
// the same logical job (same template, same resolved parameters) produce
// Jobs with equal Hash values, which is what the queue uses to dedupe —
// Go has no built-in structural-equality hashing for slices/pointers, so
// the hash is computed bottom-up as each Job is constructed (spec §9,
// "Self-referential state machine").
type Job struct {
	Hash         string
	Name         string
	ParamValues  []string
	Run          string
	Dependencies []*Job
	Inputs       []string
	Outputs      []string
	Interactive  bool
}

// Display renders "name(p1, p2, ...)" for progress output and logging.
func (j *Job) Display() string {
	if len(j.ParamValues) == 0 {
		return j.Name
	}
	return j.Name + "(" + strings.Join(j.ParamValues, ", ") + ")"
}

func (j *Job) String() string { return j.Display() }

// newJob finalizes a realized job's fields and computes its content hash.
func newJob(name string, paramValues []string, run string, deps []*Job, inputs, outputs []string, interactive bool) *Job {
	j := &Job{
		Name:         stripNewlines(name),
		ParamValues:  paramValues,
		Run:          run,
		Dependencies: deps,
		Inputs:       inputs,
		Outputs:      outputs,
		Interactive:  interactive,
	}
	j.Hash = contentHash(j)
	return j
}

func stripNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}

// contentHash derives a stable digest from every field that participates in
// RealizedJob's value equality (spec §3 invariants). Dependencies contribute
// their own already-computed hashes rather than being re-walked, since a
// dependency's hash already captures its full subtree.
func contentHash(j *Job) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{0})
		h.Write([]byte(s))
	}

	write(j.Name)
	write(strconv.Itoa(len(j.ParamValues)))
	for _, p := range j.ParamValues {
		write(p)
	}
	write(j.Run)
	write(strconv.Itoa(len(j.Dependencies)))
	for _, d := range j.Dependencies {
		write(d.Hash)
	}
	write(strconv.Itoa(len(j.Inputs)))
	for _, in := range j.Inputs {
		write(in)
	}
	write(strconv.Itoa(len(j.Outputs)))
	for _, out := range j.Outputs {
		write(out)
	}
	if j.Interactive {
		write("1")
	} else {
		write("0")
	}

	return hex.EncodeToString(h.Sum(nil))
}

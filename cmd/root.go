// Package cmd wires the Zinnfile pipeline (parse -> realize -> queue ->
// worker pool) behind a single cobra command, the way the teacher's own
// root.go wires its PersistentPreRunE/Execute shape.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jzbor/zinn/internal/nixshell"
	"github.com/jzbor/zinn/internal/progress"
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
	"github.com/jzbor/zinn/internal/runner"
	"github.com/jzbor/zinn/internal/signal"
	"github.com/jzbor/zinn/internal/template"
	"github.com/jzbor/zinn/internal/worker"
	"github.com/jzbor/zinn/internal/zinnerr"
	"github.com/jzbor/zinn/internal/zinnfile"
)

// Version is the CLI's reported version string.
const Version = "0.1.0"

// docsURL is the fixed documentation target for --docs.
const docsURL = "https://github.com/jzbor/zinn"

var (
	flagFile          string
	flagJobs          int
	flagVerbose       bool
	flagForceRebuild  bool
	flagTrace         bool
	flagDryRun        bool
	flagList          bool
	flagParams        []string
	flagOverrideConst []string
	flagNoProgress    bool
	flagDocs          bool
)

var rootCmd = &cobra.Command{
	Use:     "zinn [targets...]",
	Short:   "A parallel, dependency-aware task runner",
	Version: Version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runRoot,
}

// Execute runs the root command with SIGINT/SIGTERM handling installed.
func Execute() error {
	ctx := signal.SetupSignalHandler(context.Background())
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "zinn.yaml", "Zinnfile location")
	rootCmd.Flags().IntVarP(&flagJobs, "jobs", "j", defaultJobCount(), "worker count")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "promote per-line child output to persistent log")
	rootCmd.Flags().BoolVarP(&flagForceRebuild, "force-rebuild", "B", false, "ignore mtime skip check")
	rootCmd.Flags().BoolVarP(&flagTrace, "trace", "t", false, "print each rendered run command before executing")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "do not execute; treat every job as finished")
	rootCmd.Flags().BoolVar(&flagList, "list", false, "print name (arg, arg, ...) for each job and exit")
	rootCmd.Flags().StringArrayVarP(&flagParams, "param", "p", nil, "initial-job parameter K=V (repeatable)")
	rootCmd.Flags().StringArrayVarP(&flagOverrideConst, "override-const", "o", nil, "append/override a constant K=V (repeatable)")
	rootCmd.Flags().BoolVarP(&flagNoProgress, "no-progress", "n", false, "force the plain tracker")
	rootCmd.Flags().BoolVar(&flagDocs, "docs", false, "open the documentation URL and exit")
}

func defaultJobCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 4
}

func runRoot(cmd *cobra.Command, args []string) error {
	if flagDocs {
		return openDocs()
	}

	targets := args
	if len(targets) == 0 {
		targets = []string{"default"}
	}

	absPath, err := filepath.Abs(flagFile)
	if err != nil {
		return fmt.Errorf("%w: %s", zinnerr.ErrFile, err)
	}
	dir, base := filepath.Split(absPath)
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("%w: chdir %s: %s", zinnerr.ErrChdir, dir, err)
	}

	zf, err := zinnfile.Load(base)
	if err != nil {
		return err
	}

	if zf.Nix != nil && !nixshell.InsideWrap() {
		return nixshell.Wrap(zf.Nix)
	}

	if flagList {
		printJobList(zf)
		return nil
	}

	params, err := parseKV(flagParams)
	if err != nil {
		return err
	}
	overrides, err := parseKV(flagOverrideConst)
	if err != nil {
		return err
	}

	// Mirror the teacher's own useTUI check: an interactive tracker is
	// pointless (and breaks pipelines) when stdout isn't a terminal.
	noProgress := flagNoProgress || !isatty.IsTerminal(os.Stdout.Fd())

	opts := runner.Options{
		Verbose: flagVerbose,
		Force:   flagForceRebuild,
		Trace:   flagTrace,
		DryRun:  flagDryRun,
	}

	return runPipeline(cmd.Context(), zf, targets, params, overrides, opts, noProgress, flagJobs)
}

// runPipeline drives realize -> queue -> worker pool for a parsed Zinnfile
// and a resolved target/parameter/option set. Split out from runRoot so it
// can be exercised directly by tests without going through cobra's flag
// parsing or the directory-changing logic in runRoot.
func runPipeline(
	ctx context.Context,
	zf *zinnfile.Zinnfile,
	targets []string,
	params, overrides map[string]string,
	opts runner.Options,
	noProgress bool,
	jobs int,
) error {
	registry := template.NewRegistry(template.WithRegexHelpers())

	constants, err := realize.RenderConstants(registry, zf.Constants, overrides)
	if err != nil {
		return err
	}

	realizer := realize.NewRealizer(zf.Jobs, constants, registry)

	q := queue.New()
	for _, name := range targets {
		job, rErr := realizer.Realize(name, params)
		if rErr != nil {
			return rErr
		}
		enqueueTree(q, job)
	}
	q.Done()

	tracker := progress.New(noProgress, q.HasInteractive())
	tracker.SetNJobs(q.Len())
	tracker.Start()

	go stopOnCancel(ctx, q)

	worker.RunPool(q, tracker.ForThreads(jobs), opts)
	tracker.Wait()

	if q.HasFailed() {
		return fmt.Errorf("at least one job failed")
	}
	return nil
}

// enqueueTree enqueues job and every dependency it transitively reaches;
// Queue.Enqueue already dedupes repeats by content hash.
func enqueueTree(q *queue.Queue, job *realize.Job) {
	for _, dep := range job.Dependencies {
		enqueueTree(q, dep)
	}
	q.Enqueue(job)
}

// stopOnCancel watches ctx (SIGINT/SIGTERM via signal.SetupSignalHandler)
// and cancels the queue so no further job starts, without touching jobs
// already running.
func stopOnCancel(ctx context.Context, q *queue.Queue) {
	<-ctx.Done()
	signal.PrintCancellationMessage("zinn")
	q.Cancel()
}

func parseKV(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("%w: expected K=V, got %q", zinnerr.ErrMissingArgument, p)
		}
		out[k] = v
	}
	return out, nil
}

func printJobList(zf *zinnfile.Zinnfile) {
	for name, desc := range zf.Jobs {
		if len(desc.Args) == 0 {
			fmt.Println(name)
			continue
		}
		fmt.Printf("%s (%s)\n", name, strings.Join(desc.Args, ", "))
	}
}

func openDocs() error {
	var name string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name = "rundll32"
	default:
		name = "xdg-open"
	}
	return openerFor(name, docsURL)
}

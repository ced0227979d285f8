package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/beanls/beanls/analysis"
	"github.com/beanls/beanls/index"
	"github.com/beanls/beanls/loader"
	"github.com/beanls/beanls/output"
	"github.com/beanls/beanls/report"
	"github.com/beanls/beanls/telemetry"
)

type CheckCmd struct {
	File  string `help:"Ledger file to check; includes are followed." arg:"" type:"existingfile"`
	JSON  bool   `help:"Emit diagnostics as JSON on stdout."`
	Watch bool   `help:"Re-check whenever a loaded file changes."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if !cmd.Watch {
		_, err := cmd.checkOnce(ctx, globals)
		return err
	}
	return cmd.watch(ctx, globals)
}

// checkOnce loads the workspace, analyzes every file against the
// shared index, and reports. The error is a CommandError with a
// nonzero exit status when any error-severity diagnostic was found or
// the workspace cannot be loaded; the loaded files come back either
// way so watch mode can track them.
func (cmd *CheckCmd) checkOnce(ctx *kong.Context, globals *Globals) ([]*loader.File, error) {
	runCtx := context.Background()

	var collector *telemetry.TimingCollector
	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		timer := collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File)))
		defer func() {
			timer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			if isTerminal(os.Stderr) {
				collector.ReportStyled(ctx.Stderr, output.NewStyles(ctx.Stderr))
			} else {
				collector.Report(ctx.Stderr)
			}
		}()
	}

	files, diags, err := cmd.analyze(runCtx)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return nil, NewCommandError(1)
	}

	sources := make(map[string][]byte, len(files))
	for _, f := range files {
		sources[f.URI] = f.Text
	}

	if cmd.JSON {
		_, _ = fmt.Fprintln(ctx.Stdout, report.NewJSONFormatter(sources).FormatAll(diags))
	} else if len(diags) > 0 {
		opts := make([]report.TextOption, 0, len(sources)+1)
		for uri, text := range sources {
			opts = append(opts, report.WithSource(uri, text))
		}
		if isTerminal(os.Stderr) {
			opts = append(opts, report.WithStyles(output.NewStyles(ctx.Stderr)))
		}
		_, _ = fmt.Fprintln(ctx.Stderr, report.NewTextFormatter(opts...).FormatAll(diags))
	}

	errorCount, warningCount := 0, 0
	for _, d := range diags {
		switch d.Severity {
		case analysis.SeverityError:
			errorCount++
		case analysis.SeverityWarning:
			warningCount++
		}
	}

	if !cmd.JSON {
		switch {
		case errorCount > 0:
			printError(ctx.Stderr, fmt.Sprintf("%d error(s), %d warning(s) in %d file(s)", errorCount, warningCount, len(files)))
		case warningCount > 0:
			printInfof(ctx.Stdout, "check passed with %d warning(s) in %d file(s)", warningCount, len(files))
		default:
			printSuccess(ctx.Stdout, fmt.Sprintf("check passed, %d file(s)", len(files)))
		}
	}

	if errorCount > 0 {
		return files, NewCommandError(1)
	}
	return files, nil
}

// analyze loads the file and its includes and runs diagnostics for
// each against the workspace-wide index.
func (cmd *CheckCmd) analyze(runCtx context.Context) ([]*loader.File, []analysis.Diagnostic, error) {
	files, err := loader.New(loader.WithFollowIncludes()).Load(runCtx, cmd.File)
	if err != nil {
		return nil, nil, err
	}

	ix := index.New()
	for _, f := range files {
		ix.UpdateDocument(f.URI, f.Tree)
	}

	var diags []analysis.Diagnostic
	for _, f := range files {
		diags = append(diags, analysis.Analyze(f.URI, f.Tree, ix)...)
	}
	return files, diags, nil
}

// watch re-checks whenever a loaded file changes. The watcher covers
// the directories of every file the last run loaded, so new includes
// are picked up as they appear.
func (cmd *CheckCmd) watch(ctx *kong.Context, globals *Globals) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	run := func() {
		files, err := cmd.checkOnce(ctx, globals)
		var cmdErr *CommandError
		if err != nil && !errors.As(err, &cmdErr) {
			printError(ctx.Stderr, err.Error())
		}
		watchDirs(watcher, files)
	}
	run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Editors save through renames and truncation, and several events
	// arrive per save; a short debounce collapses them into one run.
	var pending *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".beancount") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})
		case <-rerun:
			printInfof(ctx.Stdout, "change detected, re-checking %s", cmd.File)
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(ctx.Stderr, err.Error())
		case <-stop:
			return nil
		}
	}
}

func watchDirs(watcher *fsnotify.Watcher, files []*loader.File) {
	seen := make(map[string]bool)
	for _, f := range files {
		dir := filepath.Dir(f.Path)
		if !seen[dir] {
			seen[dir] = true
			_ = watcher.Add(dir)
		}
	}
}

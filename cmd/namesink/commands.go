package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/Nomadcxx/namesink/internal/batch"
	"github.com/Nomadcxx/namesink/internal/config"
	"github.com/Nomadcxx/namesink/internal/fsrename"
	"github.com/Nomadcxx/namesink/internal/logging"
	"github.com/Nomadcxx/namesink/internal/names"
	"github.com/Nomadcxx/namesink/internal/notify"
	"github.com/Nomadcxx/namesink/internal/store"
	"github.com/Nomadcxx/namesink/internal/ui"
)

// renamePair is one "path=newname" argument of namesink run
type renamePair struct {
	Path string
	Name string
}

// parseRenameArgs splits each argument at the first '='.
// New names are NFC-normalised so they compare equal to names typed in the editor.
func parseRenameArgs(args []string) ([]renamePair, error) {
	pairs := make([]renamePair, 0, len(args))
	for _, arg := range args {
		path, name, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid argument %q: expected path=newname", arg)
		}
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid argument %q: missing path", arg)
		}
		pairs = append(pairs, renamePair{Path: path, Name: norm.NFC.String(name)})
	}
	return pairs, nil
}

// session wires one store, coordinator and renamer together
type session struct {
	store    *store.Store
	coord    *batch.Coordinator
	journal  *fsrename.Journal
	progress *progressRenamer
	dryRun   bool
}

func newSession(rc config.RenameConfig, sink notify.Sink, files []store.SourceFile) (*session, error) {
	var journal *fsrename.Journal
	if rc.Journal && !rc.DryRun {
		j, err := fsrename.NewJournal()
		if err != nil {
			return nil, err
		}
		journal = j
	}

	s := store.New(sink)
	s.Initialize(files)

	progress := &progressRenamer{next: &fsrename.Renamer{DryRun: rc.DryRun, Journal: journal}}
	coord := batch.New(s, progress, sink, batch.Config{Workers: rc.Workers})

	return &session{store: s, coord: coord, journal: journal, progress: progress, dryRun: rc.DryRun}, nil
}

// close saves the journal when anything was recorded and returns its id
func (s *session) close() (string, error) {
	if s.journal == nil || s.journal.Len() == 0 {
		return "", nil
	}
	if err := s.journal.Complete(); err != nil {
		return "", err
	}
	return s.journal.Metadata.JournalID, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	rc, err := renameSettings(cmd, cfg.Rename)
	if err != nil {
		return err
	}

	if !isTerminal(os.Stdout) {
		return errors.New("edit needs an interactive terminal; use namesink run instead")
	}

	files, err := fsrename.SourcesFromPaths(args)
	if err != nil {
		return err
	}

	toasts := ui.NewToastLog(3)
	sess, err := newSession(rc, toasts, files)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; log lines would tear the screen
	logging.Discard()

	p := tea.NewProgram(ui.NewEditorModel(sess.store, sess.coord, toasts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	id, err := sess.close()
	if err != nil {
		return err
	}
	if id != "" {
		fmt.Printf("Rename journal saved: %s\n", id)
		fmt.Printf("Undo with: namesink undo %s\n", id)
	}
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	rc, err := renameSettings(cmd, cfg.Rename)
	if err != nil {
		return err
	}

	pairs, err := parseRenameArgs(args)
	if err != nil {
		return err
	}

	paths := make([]string, len(pairs))
	for i, p := range pairs {
		paths[i] = p.Path
	}
	files, err := fsrename.SourcesFromPaths(paths)
	if err != nil {
		return err
	}

	sess, err := newSession(rc, nil, files)
	if err != nil {
		return err
	}

	for i, it := range sess.store.Snapshot().Items {
		sess.store.Rename(it.ID, pairs[i].Name)
	}

	if !printPlan(sess.store) {
		return errInvalidNames
	}

	if err := sess.coord.RequestRename(); err != nil {
		if errors.Is(err, batch.ErrNothingToRename) {
			fmt.Println(ui.FormatStatusWarn("No changes detected: none of the files have been modified"))
			return nil
		}
		return err
	}

	if cfg.UI.Confirm && !assumeYes && !sess.dryRun {
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout()) {
			fmt.Println("Rename cancelled.")
			return sess.coord.Cancel()
		}
	}

	// Create context with cancellation support (Ctrl+C)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nStopping after the renames in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if !quiet && isTerminal(os.Stderr) {
		sess.progress.start(sess.store.ModifiedCount(), os.Stderr)
	}

	result, err := sess.coord.Confirm(ctx)
	sess.progress.finish()
	if err != nil {
		return err
	}

	printResult(result, sess.dryRun)

	id, err := sess.close()
	if err != nil {
		return err
	}
	if id != "" {
		fmt.Printf("\nRename journal saved: %s\n", id)
	}

	if !result.OK() {
		return fmt.Errorf("%d of %d renames did not complete", result.Failed+result.Skipped, len(result.Items))
	}
	return nil
}

// printPlan lists every row and reports whether all candidates are valid
func printPlan(s *store.Store) bool {
	fmt.Printf("%d out of %d files will be renamed\n\n", s.ModifiedCount(), s.Len())

	valid := true
	for _, it := range s.Snapshot().Items {
		v := it.Validation()
		switch {
		case !v.Valid:
			valid = false
			fmt.Println(ui.FormatStatusFail(fmt.Sprintf("%s → %s: %s", it.Source.Name, it.Candidate, v.Error)))
		case it.Modified():
			fmt.Println(ui.FormatStatusInfo(fmt.Sprintf("%s → %s", it.Source.Name, it.Candidate)))
		default:
			fmt.Println(ui.MutedStyle.Render(fmt.Sprintf("  %s (unchanged)", it.Source.Name)))
		}
	}
	fmt.Println()
	return valid
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Are you sure you want to proceed? (yes/no): ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

func printResult(result *batch.Result, dry bool) {
	verb := "Renamed"
	if dry {
		verb = "Would rename"
	}

	if result.OK() {
		fmt.Println(ui.SuccessStyle.Render("Rename completed!"))
	} else {
		fmt.Println(ui.ErrorStyle.Render("Rename finished with errors"))
	}

	fmt.Printf("✓ %s: %d\n", verb, result.Succeeded)
	if result.Failed > 0 {
		fmt.Printf("✗ Failed: %d\n", result.Failed)
	}
	if result.Skipped > 0 {
		fmt.Printf("⚠ Skipped: %d\n", result.Skipped)
	}

	for i, f := range result.Failures() {
		reason := f.Outcome.String()
		if f.Err != nil {
			reason = f.Err.Error()
		}
		fmt.Printf("  %d. %s → %s: %s\n", i+1, f.Source.Name, f.Candidate, reason)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, name := range args {
		name = norm.NFC.String(name)
		if v := names.Validate(name); v.Valid {
			fmt.Println(ui.FormatStatusOK(name))
		} else {
			invalid++
			fmt.Println(ui.FormatStatusFail(fmt.Sprintf("%s: %s", name, v.Error)))
		}
	}

	if invalid > 0 {
		return errInvalidNames
	}
	return nil
}

func runUndo(cmd *cobra.Command, args []string) error {
	var journal *fsrename.Journal

	if len(args) == 1 {
		j, err := fsrename.LoadJournal(args[0])
		if err != nil {
			return err
		}
		journal = j
	} else {
		j, err := latestRevertible()
		if err != nil {
			return err
		}
		journal = j
	}

	fmt.Printf("Reverting journal %s (%d operations)...\n", journal.Metadata.JournalID, journal.Len())

	result, err := journal.Revert()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Reverted: %d\n", result.Reverted)
	if result.Failed > 0 {
		fmt.Printf("\n⚠ Errors encountered: %d\n", result.Failed)
		for i, err := range result.Errors {
			fmt.Printf("  %d. %v\n", i+1, err)
		}
		return fmt.Errorf("%d renames could not be reverted", result.Failed)
	}
	return nil
}

// latestRevertible returns the newest journal that has not been reverted yet
func latestRevertible() (*fsrename.Journal, error) {
	journals, err := fsrename.ListJournals()
	if err != nil {
		return nil, err
	}
	for _, j := range journals {
		if j.Metadata.Status != "reverted" {
			return j, nil
		}
	}
	return nil, fsrename.ErrNothingToRevert
}

func runJournalList(cmd *cobra.Command, args []string) error {
	journals, err := fsrename.ListJournals()
	if err != nil {
		return err
	}

	if len(journals) == 0 {
		fmt.Println("No rename journals.")
		return nil
	}

	for _, j := range journals {
		ok := 0
		for _, op := range j.Metadata.Operations {
			if op.Success {
				ok++
			}
		}
		fmt.Printf("%s  %s  %-10s  %d renamed, %d failed\n",
			j.Metadata.JournalID,
			j.Metadata.CreatedAt.Format("2006-01-02 15:04:05"),
			j.Metadata.Status,
			ok, len(j.Metadata.Operations)-ok,
		)
	}
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := fsrename.LoadJournal(args[0])
	if err != nil {
		return err
	}

	out, err := j.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runJournalRm(cmd *cobra.Command, args []string) error {
	for _, id := range args {
		if err := fsrename.DeleteJournal(id); err != nil {
			return err
		}
		log.Info().Str("journal", id).Msg("journal deleted")
	}
	return nil
}

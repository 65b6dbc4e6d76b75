package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/namesink/internal/config"
	"github.com/Nomadcxx/namesink/internal/logging"
	"github.com/Nomadcxx/namesink/internal/ui"
)

var (
	cfgFile   string
	quiet     bool
	verbose   bool
	dryRun    bool
	assumeYes bool
	workers   int

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Version information (set via -ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// errInvalidNames makes check exit non-zero without printing usage
var errInvalidNames = errors.New("one or more names are invalid")

const exampleConfig = `log_level = "normal"  # quiet, normal, verbose

[rename]
workers = 4      # concurrent renames per batch, 1 = sequential
dry_run = false
journal = true   # record renames so they can be undone

[ui]
confirm = true   # ask before namesink run executes
`

var rootCmd = &cobra.Command{
	Use:               "namesink",
	Short:             "Batch file renamer with extension preservation and undo",
	Long:              getLongDescription(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var editCmd = &cobra.Command{
	Use:   "edit <files...>",
	Short: "Edit new names for files in the TUI and rename them as a batch",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEdit,
}

var runCmd = &cobra.Command{
	Use:   "run <path=newname>...",
	Short: "Rename files non-interactively",
	Long: "Rename files non-interactively. Each argument is a path and its new name\n" +
		"separated by the first '='. A new name without an extension keeps the\n" +
		"extension of the original file.",
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var checkCmd = &cobra.Command{
	Use:   "check <name>...",
	Short: "Check whether file names are valid",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

var undoCmd = &cobra.Command{
	Use:   "undo [journal-id]",
	Short: "Revert the most recent (or the given) rename journal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUndo,
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List rename journals",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <journal-id>",
	Short: "Print a rename journal as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalRmCmd = &cobra.Command{
	Use:   "rm <journal-id>...",
	Short: "Delete rename journals",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runJournalRm,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration file location and contents",
	RunE:  runConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("namesink %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/namesink/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every rename")

	for _, c := range []*cobra.Command{editCmd, runCmd} {
		c.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be renamed without touching any file")
		c.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent renames (default from config)")
	}
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalRmCmd)

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidNames) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	cfg = loaded

	level, err := resolveLogLevel(cfg.LogLevel, quiet, verbose)
	if err != nil {
		return err
	}
	logging.Setup(level, os.Stderr)
	return nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

// resolveLogLevel applies --quiet and --verbose over the configured level
func resolveLogLevel(configured string, quiet, verbose bool) (logging.LogLevel, error) {
	if quiet && verbose {
		return logging.LogLevelNormal, errors.New("--quiet and --verbose are mutually exclusive")
	}
	switch {
	case quiet:
		return logging.LogLevelQuiet, nil
	case verbose:
		return logging.LogLevelVerbose, nil
	}
	return logging.ParseLogLevel(configured)
}

// renameSettings merges the command line flags over the config file
func renameSettings(cmd *cobra.Command, rc config.RenameConfig) (config.RenameConfig, error) {
	if cmd.Flags().Changed("dry-run") {
		rc.DryRun = dryRun
	}
	if cmd.Flags().Changed("workers") {
		if workers < 1 || workers > config.MaxWorkers {
			return rc, fmt.Errorf("invalid worker count: %d (must be 1-%d)", workers, config.MaxWorkers)
		}
		rc.Workers = workers
	}
	return rc, nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	fmt.Printf("Configuration file: %s\n\n", configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("Config file does not exist. Create it with:")
		fmt.Println()
		fmt.Print(exampleConfig)
		return nil
	}

	fmt.Println("Current configuration:")
	fmt.Printf("\n  Log level:      %s\n", cfg.LogLevel)
	fmt.Printf("\nRename settings:\n")
	fmt.Printf("  Workers:        %d\n", cfg.Rename.Workers)
	fmt.Printf("  Dry run:        %t\n", cfg.Rename.DryRun)
	fmt.Printf("  Journal:        %t\n", cfg.Rename.Journal)
	fmt.Printf("\nUI settings:\n")
	fmt.Printf("  Confirm:        %t\n", cfg.UI.Confirm)
	return nil
}

func getLongDescription() string {
	return ui.FormatASCIIHeader() + "\n\n" +
		"namesink renames batches of files. New names are validated before anything\n" +
		"touches the disk, extensions are kept when you leave them out, and every\n" +
		"batch is journaled so it can be undone."
}

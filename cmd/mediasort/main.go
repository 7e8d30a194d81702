package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"mediasort/internal/app"
	"mediasort/internal/config"
	"mediasort/internal/sorter"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var verbose bool

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults["config_path"], nil
}

// newApp reads the config and creates a SorterApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "run", "history").
func newApp(operation string) (*app.SorterApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewSorterApp(cfg, operation, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "mediasort",
	Short: "Sort photos and videos into dated folders",
}

// run command
var runCmd = &cobra.Command{
	Use:   "run SOURCE DEST",
	Short: "Copy files from SOURCE into dated folders under DEST",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("run")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Run(args[0], args[1], app.NewConsoleProgress(os.Stdout))
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		fmt.Printf("\nRun %s\n", report.RunID)
		printCounts("Source", report.SourceRoot, report.Source)
		printCounts("Destination", report.DestRoot, report.Destination)

		if diffs := report.Discrepancies(); len(diffs) > 0 {
			fmt.Println("\nCount differences:")
			for _, d := range diffs {
				fmt.Printf("  %-10s source %d  destination %d\n", extLabel(d.Ext), d.Source, d.Destination)
			}
		}

		if folders := report.FailedFolders(); len(folders) > 0 {
			fmt.Println("\nFolders not created:")
			for _, f := range folders {
				fmt.Printf("  %s: %v\n", f.Path, f.Err)
			}
		}

		if failed := report.Failed(); len(failed) > 0 {
			fmt.Printf("\n%d file(s) not copied:\n", len(failed))
			for _, c := range failed {
				fmt.Printf("  %s (%s)\n", c.Record.Source.String(), sorter.CopyErrorKindOf(c.Err))
			}
		}

		fmt.Printf("\nCopied %d of %d file(s)\n", report.Copied(), report.Source.Len())
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan PATH",
	Short: "Count files and capture-date buckets without copying",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("scan")
		if err != nil {
			return err
		}
		defer a.Close()

		inv, err := a.Scan(args[0])
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		printCounts("Files", inv.Root, inv)

		undated := 0
		for _, r := range inv.Records {
			if !r.Dated() {
				undated++
			}
		}
		fmt.Println("\nBuckets:")
		for _, b := range inv.Buckets() {
			fmt.Printf("  %s\n", b)
		}
		fmt.Printf("  (%d file(s) without a capture date)\n", undated)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %s  %-8s  %d/%d copied  %s\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Copied,
				r.SourceFiles,
				duration,
			)
			fmt.Printf("    %s -> %s\n", r.SourceRoot, r.DestRoot)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "View the files of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failedOnly, _ := cmd.Flags().GetBool("failed")

		a, err := newApp("show")
		if err != nil {
			return err
		}
		defer a.Close()

		run, copies, err := a.ShowRun(args[0], failedOnly)
		if err != nil {
			return err
		}

		fmt.Printf("Run %s (%s)\n", run.ID, run.Status)
		fmt.Printf("  %s -> %s\n", run.SourceRoot, run.DestRoot)
		fmt.Printf("  source %d  destination %d  copied %d  failed %d\n\n",
			run.SourceFiles, run.DestFiles, run.Copied, run.Failed)

		for _, c := range copies {
			switch c.Status {
			case sorter.CopyStatusCopied:
				fmt.Printf("%-8s %s -> %s\n", c.Status, c.SourcePath, c.DestPath)
			default:
				fmt.Printf("%-8s %s: %s\n", c.Status, c.SourcePath, c.Error)
			}
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Layout:       %s, %s/%s/%s\n",
			cfg.Layout.Unsorted, cfg.Layout.ImageDir, cfg.Layout.VideoDir, cfg.Layout.OtherDir)
		fmt.Printf("Video Reader: %s\n", cfg.Metadata.VideoReader)
		fmt.Printf("Catalog:      %s %s\n", cfg.Catalog.Type, cfg.Catalog.DataDir)
		if len(cfg.Filesystem.Ignore) > 0 {
			fmt.Printf("Ignore:       %s\n", strings.Join(cfg.Filesystem.Ignore, ", "))
		}
		return nil
	},
}

// printCounts prints the per-extension tally of an inventory.
func printCounts(title, root string, inv *sorter.Inventory) {
	fmt.Printf("\n%s: %s\n", title, root)
	if inv == nil || inv.Len() == 0 {
		fmt.Println("  (no files)")
		return
	}
	counts := inv.Counts()
	for _, ext := range inv.Extensions() {
		fmt.Printf("  %-10s %d\n", extLabel(ext), counts[ext])
	}
	fmt.Printf("  %-10s %d\n", "total", inv.Len())
}

func extLabel(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("failed", false, "Show only files that were not copied")
	rootCmd.AddCommand(configCmd)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/gubarz/fnspan/internal/analyzer"
	"github.com/gubarz/fnspan/internal/config"
	"github.com/gubarz/fnspan/internal/discovery"
	"github.com/gubarz/fnspan/internal/launcher"
	"github.com/gubarz/fnspan/internal/logging"
	"github.com/gubarz/fnspan/internal/report"
	"github.com/gubarz/fnspan/internal/spans"
	"github.com/gubarz/fnspan/internal/telemetry"
	"github.com/gubarz/fnspan/internal/theme"
	"github.com/gubarz/fnspan/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

// errViolations fails the run without printing an error message
var errViolations = errors.New("functions over the line limit")

var cfgFile string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the function spans of one file as JSON",
	Long: `Prints every function span found in a single source file as a JSON
array, in the order the functions close. Use "-" to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var rootCmd = &cobra.Command{
	Use:   "fnspan [path...]",
	Short: "Find functions that run too long",
	Long: `Scans JavaScript and TypeScript style sources for function
declarations, arrow functions and methods, measures how many lines each
one spans and reports the ones over the limit.

Exits with status 1 when a function over the limit is not allowed.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runScan,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(extractCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.config/fnspan/fnspan.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")

	rootCmd.Flags().IntP("max-lines", "n", 0, "Report functions longer than this many lines")
	rootCmd.Flags().StringP("output", "o", "", "Output format: text, json, yaml")
	rootCmd.Flags().BoolP("all", "a", false, "List every function, not only the long ones")
	rootCmd.Flags().BoolP("interactive", "i", false, "Browse the findings interactively")
	rootCmd.Flags().Bool("no-fail", false, "Exit 0 even when functions are over the limit")
	rootCmd.Flags().IntP("workers", "w", 0, "Files scanned in parallel")
	rootCmd.Flags().StringArray("allow", nil, "Allow a file or function: glob or glob:function (repeatable)")
	rootCmd.Flags().BoolP("benchmark", "b", false, "Print scan statistics and exit")

	viper.BindPFlag("max_lines", rootCmd.Flags().Lookup("max-lines"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("show_all", rootCmd.Flags().Lookup("all"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := config.Init(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func setupLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logger, _, err := logging.Setup(cmd.ErrOrStderr(), config.GetLogLevel(), config.GetLogFormat())
	if err != nil {
		return nil, err
	}
	logger.Debug("starting", slog.String("version", version), slog.String("command", cmd.Name()))
	return logger, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if _, err := setupLogger(cmd); err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("path error: %w", err)
		}
		defer f.Close()
		in = f
	}

	found, err := spans.ExtractReader(in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(found)
}

func runScan(cmd *cobra.Command, args []string) error {
	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}

	if noFail, _ := cmd.Flags().GetBool("no-fail"); noFail {
		config.SetFailOnViolation(false)
	}
	if allow, _ := cmd.Flags().GetStringArray("allow"); len(allow) > 0 {
		config.AddAllow(allow...)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{config.GetPath()}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	metrics, err := telemetry.New()
	if err != nil {
		return err
	}
	defer metrics.Shutdown(context.Background())

	start := time.Now()
	walker := discovery.NewWalker(discovery.Options{
		Extensions:       config.GetExtensions(),
		SkipDirs:         config.GetSkipDirs(),
		RespectGitignore: config.GetRespectGitignore(),
		MaxFileBytes:     config.GetMaxFileBytes(),
		Logger:           logger,
	})
	files, err := walker.WalkAll(ctx, paths)
	if err != nil {
		return err
	}
	logger.Debug("discovered files", slog.Int("count", len(files)), slog.Any("paths", paths))

	result, err := analyzer.New(analyzer.Options{
		MaxLines: config.GetMaxLines(),
		Workers:  config.GetWorkers(),
		Allow:    config.GetAllow(),
		ShowAll:  config.GetShowAll(),
		Logger:   logger,
		Metrics:  metrics,
	}).Run(ctx, files)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if benchmark, _ := cmd.Flags().GetBool("benchmark"); benchmark {
		return printBenchmark(ctx, cmd.OutOrStdout(), metrics, time.Since(start))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		sources := make(map[string]string, len(files))
		for _, f := range files {
			sources[f.Path] = f.Text
		}
		err := ui.Run(result, sources, launcher.New())
		if errors.Is(err, ui.ErrNoFindings) {
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary(result))
			err = nil
		}
		if err != nil {
			return err
		}
	} else {
		err := report.Write(cmd.OutOrStdout(), result, report.Options{
			Format:        config.GetOutput(),
			Styles:        textStyles(cmd.OutOrStdout()),
			ColumnGap:     config.GetColumnGap(),
			LocationWidth: config.GetColumnLocation(),
			NameWidth:     config.GetColumnName(),
		})
		if err != nil {
			return err
		}
	}

	if result.Failed() && config.GetFailOnViolation() {
		return errViolations
	}
	return nil
}

// textStyles colors the text report only when it goes to a terminal
func textStyles(w io.Writer) *theme.Styles {
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if info, err := f.Stat(); err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return nil
	}
	return theme.FromConfig()
}

func printBenchmark(ctx context.Context, w io.Writer, metrics *telemetry.Metrics, elapsed time.Duration) error {
	stats, err := metrics.Snapshot(ctx)
	if err != nil {
		return err
	}

	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	fmt.Fprintf(w, "Scanned %d files, %d functions in %v (extract %.3fs)\n",
		stats.FilesScanned, stats.FunctionsFound, elapsed, stats.ScanSeconds)
	fmt.Fprintf(w, "Over limit: %d (%d excused), longest function: %d lines\n",
		stats.Violations, stats.Excused, stats.LongestFunction)
	fmt.Fprintf(w, "Memory: Alloc=%dMB, TotalAlloc=%dMB, Sys=%dMB, HeapObjects=%d\n",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.HeapObjects)
	return nil
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

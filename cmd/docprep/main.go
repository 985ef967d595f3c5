package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/xhad/docprep/pkg/config"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool

	cfg    *config.Config
	logger *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docprep",
	Short: "Document preprocessing for retrieval pipelines",
	Long: `docprep normalizes raw document text, splits it into chunks with a
strategy chosen by document type, and optionally runs the text through a
spelling correction backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml, ~/.config/docprep/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(chunkCmd, correctCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command) error {
	loaded, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		loaded.Log.JSON = logJSON
	}

	l, err := newLogger(os.Stderr, loaded.Log.Level, loaded.Log.JSON)
	if err != nil {
		return err
	}
	log.SetDefault(l)

	cfg = loaded
	logger = l
	return nil
}

func newLogger(w io.Writer, level string, json bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	}
	if json {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts), nil
}

// validateConfig runs after command flags have been folded into cfg.
func validateConfig(c *config.Config) error {
	verrs := c.Validate()
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, e := range verrs {
		msgs[i] = e.Error()
	}
	return errors.New("invalid configuration: " + strings.Join(msgs, "; "))
}

// readInput reads the named file, or stdin when the name is "-" or missing.
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/log2csv/internal/model"
	"github.com/ppiankov/log2csv/internal/pipeline"
)

// ErrUsage is returned when the command line is wrong; usage has already
// been printed
var ErrUsage = errors.New("usage")

const usageLine = "Usage: log2csv <run_file_path>"

var (
	cfgFile string
	verbose bool
	keepLog bool
	useCRLF bool
	noColor bool
)

// rootCmd converts one simulator run
var rootCmd = &cobra.Command{
	Use:   "log2csv <run_file_path>",
	Short: "Convert a simulator logfile into participant, contact and transmission tables",
	Long: `log2csv reads <run_file_path>_logfile.txt, a simulator log where every
line starts with a 6-character tag, and writes one CSV per record kind:

  [PART]  <run_file_path>_participants.csv
  [CONT]  <run_file_path>_contacts.csv
  [TRAN]  <run_file_path>_transmissions.csv

Lines with any other tag are skipped. Tables that receive no rows are not
created. The logfile is removed once the conversion succeeds.

Example:
  log2csv output/run1
  log2csv output/run1 --keep-log --crlf`,
	Args:          exactRunPath,
	RunE:          runConvert,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "log2csv v0.2.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.log2csv/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Conversion flags
	rootCmd.Flags().BoolVar(&keepLog, "keep-log", false, "keep the logfile after a successful conversion")
	rootCmd.Flags().BoolVar(&useCRLF, "crlf", false, "terminate CSV rows with \\r\\n")

	// Bind flags to viper
	_ = viper.BindPFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("output.keep_log", rootCmd.Flags().Lookup("keep-log"))
	_ = viper.BindPFlag("output.use_crlf", rootCmd.Flags().Lookup("crlf"))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		fmt.Fprintln(cmd.OutOrStdout(), usageLine)
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.log2csv")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LOG2CSV_*
	viper.SetEnvPrefix("LOG2CSV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("log.verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("output.use_crlf", cfg.Output.UseCRLF)
	v.SetDefault("output.keep_log", cfg.Output.KeepLog)
	v.SetDefault("scan.max_line_bytes", cfg.Scan.MaxLineBytes)
	v.SetDefault("log.verbose", cfg.Log.Verbose)
	v.SetDefault("log.no_color", cfg.Log.NoColor)
}

// loadConfig resolves flags, env, config file and defaults into a Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// exactRunPath prints the classic usage line instead of cobra's help
func exactRunPath(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(cmd.OutOrStdout(), usageLine)
		return ErrUsage
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	basePath := args[0]

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Log.NoColor {
		color.NoColor = true
	}

	out := cmd.ErrOrStderr()
	if cfg.Log.Verbose {
		printPlan(out, basePath, cfg)
	}

	summary, err := pipeline.NewConverter(cfg).Convert(context.Background(), basePath)
	if err != nil {
		printFailure(out, basePath, err)
		return &reportedError{err: fmt.Errorf("convert %s: %w", basePath, err)}
	}

	printSummary(out, summary, cfg.Log.Verbose)
	return nil
}

func printPlan(w io.Writer, basePath string, cfg *model.Config) {
	fmt.Fprintf(w, "Converting: %s\n", pipeline.SourcePath(basePath))
	for _, s := range model.Schemas() {
		fmt.Fprintf(w, "  %s -> %s\n", s.Tag, pipeline.TablePath(basePath, s))
	}
	fmt.Fprintf(w, "Keep log: %v\n", cfg.Output.KeepLog)
	fmt.Fprintf(w, "CRLF: %v\n", cfg.Output.UseCRLF)
	fmt.Fprintln(w)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/masonvector/masonvector/internal/logging"
	"github.com/masonvector/masonvector/internal/model"
)

const version = "v0.3.0"

var (
	cfgFile string
	verbose bool

	// Set by PersistentPreRunE for every subcommand
	appConfig *model.Config
	logger    = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "masonvector",
	Short: "masonvector - claimant record deduplication",
	Long: `masonvector splits batches of claimant records into duplicates and
fresh records before they are loaded into a claims corpus.

Records are duplicates when their normalized name, date of birth and state
agree exactly. Fresh records are then reviewed against the corpus by email,
claim id and name similarity so near-duplicates can be checked by a person.

masonvector flags candidates; it never merges or deletes on its own.`,
	SilenceErrors:      true,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for masonvector.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "masonvector %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.masonvector/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".masonvector"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// Read in environment variables that match MASONVECTOR_*,
	// e.g. MASONVECTOR_MATCH_BEST_THRESHOLD
	viper.SetEnvPrefix("MASONVECTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so env vars resolve during Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("match.best_threshold", cfg.Match.BestThreshold)
	viper.SetDefault("match.potential_threshold", cfg.Match.PotentialThreshold)
	viper.SetDefault("match.fold_accents", cfg.Match.FoldAccents)
	viper.SetDefault("match.review", cfg.Match.Review)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl_seconds", cfg.Cache.TTLSeconds)
	viper.SetDefault("store.path", cfg.Store.Path)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.include_records", cfg.Output.IncludeRecords)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("logging.format", cfg.Logging.Format)
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if cfg.Output.Verbose && level == "warn" {
		level = "info"
	}
	l, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = l
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	// Sync on a console fd fails with EINVAL on some platforms
	_ = logger.Sync()
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hyperterse/querygate/core/cli/internal"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// version stores the version string, set via SetVersion()
var version = "dev"

// SetVersion sets the version string (called from main.init())
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version string
func GetVersion() string {
	return version
}

var (
	configFile  string
	port        string
	grpcPort    string
	environment string
	watch       bool
	logLevel    int
	verbose     bool
	logTags     string
	logFile     bool
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "querygate",
	Short:         "Querygate\nServe an allow-list of parameterized queries over HTTP and gRPC",
	SilenceUsage:  true,
	SilenceErrors: true, // Errors are logged once by cli.Execute
}

// completionCmd generates shell completions
var completionCmd = &cobra.Command{
	Use:          "completion [bash|zsh|fish|powershell]",
	Short:        "Generate shell completion script",
	Hidden:       true,
	ValidArgs:    []string{"bash", "zsh", "fish", "powershell"},
	Args:         cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the installed version and exit")

	rootCmd.PersistentFlags().StringVarP(&configFile, "file", "f", "", "Path to the configuration file (default: ./"+internal.DefaultConfigFile+")")
	rootCmd.PersistentFlags().IntVar(&logLevel, "log-level", 0, "Log level: 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging (sets log level to DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logTags, "log-tags", "", "Filter logs by tags (comma-separated, use -tag to exclude). Overrides "+logging.TagFilterEnv)
	rootCmd.PersistentFlags().BoolVar(&logFile, "log-file", false, "Stream logs to a file under the temp directory")

	// Root command should only print help.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}
		return cmd.Help()
	}
}

// configureLogging applies the logging flags. The level is applied again
// once the config file is known.
func configureLogging() error {
	logging.SetLogLevel(internal.ResolveLogLevel(verbose, logLevel, nil))

	tagFilter := logTags
	if tagFilter == "" {
		tagFilter = os.Getenv(logging.TagFilterEnv)
	}
	if tagFilter != "" {
		logging.SetTagFilter(tagFilter)
	}

	if logFile {
		filePath, err := logging.SetLogFile()
		if err != nil {
			return logging.WithTag("main", fmt.Errorf("failed to initialize log file: %w", err))
		}
		logging.New("main").Infof("Log file: %s", filePath)
	}
	return nil
}

// configFilePath returns the config file selected by --file or the default
func configFilePath() string {
	if configFile != "" {
		return configFile
	}
	return internal.DefaultConfigFile
}

// LoadEnvFiles attempts to load .env files from multiple locations.
// It tries each location in order and stops at the first successful load.
// Priority order:
// 1. From the provided directory (if not empty)
// 2. From the current working directory
// 3. From the directory containing the executable binary
// System environment variables always take precedence over .env file values.
func LoadEnvFiles(fromDir string) {
	envFiles := []string{".env.local", ".env.development", ".env"}

	dirs := []string{}
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, "")
	if execPath, err := os.Executable(); err == nil {
		if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = realPath
		}
		dirs = append(dirs, filepath.Dir(execPath))
	}

	for _, dir := range dirs {
		for _, envFile := range envFiles {
			if err := godotenv.Load(filepath.Join(dir, envFile)); err == nil {
				return
			}
		}
	}
}

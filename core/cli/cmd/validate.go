package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperterse/querygate/core/cli/internal"
	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/parser"
)

// validateCmd checks the configuration and every query definition
var validateCmd = &cobra.Command{
	Use:           "validate",
	Short:         "Validate the configuration and the query registry",
	RunE:          validateConfig,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	log := logging.New("validate")

	if err := configureLogging(); err != nil {
		return err
	}

	path := configFilePath()
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}

	docs, err := loadDefinitions(cfg)
	if err != nil {
		return logging.WithTag("validate", err)
	}

	warnings, err := parser.ValidateDefinitions(docs)
	for _, warning := range warnings {
		log.Warn(warning)
	}
	if err != nil {
		var verrs *parser.ValidationErrors
		if errors.As(err, &verrs) {
			return logging.WithTag("validate", fmt.Errorf("registry is invalid: %d error(s)", len(verrs.Errors)))
		}
		return logging.WithTag("validate", err)
	}

	log.Info("Validation report:")
	log.Infof("  config: %s", path)
	log.Infof("  connector: %s", cfg.Adapter.Connector)
	if cfg.Registry.File != "" {
		log.Infof("  registry file: %s", cfg.Registry.File)
	}
	log.Infof("  definitions: %d (%d warning(s))", len(docs), len(warnings))
	log.Successf("Configuration is valid: %s", path)
	return nil
}

// loadDefinitions collects inline and registry file definitions without
// rejecting anything, so every problem can be reported
func loadDefinitions(cfg *domain.Config) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(cfg.Queries))
	docs = append(docs, cfg.Queries...)

	if cfg.Registry.File == "" {
		return docs, nil
	}
	fileDocs, err := parser.ParseDefinitionsFile(resolvePath(cfg, cfg.Registry.File))
	if err != nil {
		return nil, err
	}
	return append(docs, fileDocs...), nil
}

func resolvePath(cfg *domain.Config, path string) string {
	if filepath.IsAbs(path) || cfg.Dir == "" {
		return path
	}
	return filepath.Join(cfg.Dir, path)
}

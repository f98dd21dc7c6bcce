package cli

import (
	"github.com/hyperterse/querygate/core/cli/cmd"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// Execute runs the CLI. Errors are logged once, under the tag they carry.
func Execute() error {
	if err := cmd.Execute(); err != nil {
		tag := logging.ErrorTag(err)
		if tag == "" {
			tag = "cli"
		}
		logging.New(tag).Error(err.Error())
		return err
	}
	return nil
}

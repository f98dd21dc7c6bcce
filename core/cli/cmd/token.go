package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperterse/querygate/core/cli/internal"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

var (
	tokenSubject string
	tokenAccess  []string
	tokenTTL     time.Duration
)

// tokenCmd mints a bearer token signed with the configured secret. It is a
// development aid; production tokens come from the identity provider.
var tokenCmd = &cobra.Command{
	Use:           "token",
	Short:         "Mint a bearer token for local testing",
	RunE:          mintToken,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Caller subject (sub claim)")
	tokenCmd.Flags().StringSliceVar(&tokenAccess, "access", nil, "Granted access tags (comma-separated)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime (0 for no expiry)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func mintToken(cmd *cobra.Command, args []string) error {
	cfg, err := internal.LoadConfig(configFilePath())
	if err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return logging.WithTag("token", err)
	}

	token, err := authenticator.Mint(tokenSubject, tokenAccess, tokenTTL)
	if err != nil {
		return logging.WithTag("token", fmt.Errorf("failed to sign token: %w", err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

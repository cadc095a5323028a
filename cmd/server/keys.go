package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

func newKeysCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys offline",
	}
	cmd.AddCommand(newKeysGenerateCmd(v))
	cmd.AddCommand(newKeysHashCmd())
	return cmd
}

// keyOutput is printed by keys generate. The raw key is shown only here.
type keyOutput struct {
	Key string `json:"api_key"`
	*auth.KeyInfo
}

func newKeysGenerateCmd(v *viper.Viper) *cobra.Command {
	var (
		label  string
		tier   string
		scopes []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Mint a signed API key",
		Long: `Mint a signed API key with KEY_SIGNING_SECRET.

Signed keys verify on any server sharing the secret, without a key list.
The key is printed once; store it securely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minter, err := auth.NewMinter(&auth.Config{
				SigningSecret: v.GetString("keys.signing_secret"),
				Issuer:        v.GetString("keys.issuer"),
			})
			if err != nil {
				return fmt.Errorf("cannot mint keys: %w", err)
			}

			key, info, err := minter.Mint(auth.GenerateRequest{
				Description: label,
				Tier:        tier,
				Scopes:      scopes,
				TTL:         ttl,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(keyOutput{Key: key, KeyInfo: info})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "description of the key's owner (required)")
	cmd.Flags().StringVar(&tier, "tier", apikey.TierDefault, "rate-limit tier: default, elevated or unlimited")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{apikey.ScopeRead}, "granted scope (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "key lifetime; 0 never expires")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func newKeysHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash KEY",
		Short: "Print the key ID that logs and rate limits use for KEY",
		Long: `Print the non-secret key ID derived from an opaque key.

Log lines and rate-limit counters name keys by this ID, so it can be
used to find a key's activity without handling the key itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if key == "" {
				return fmt.Errorf("key cannot be empty")
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.KeyID(key))
			return nil
		},
	}
}

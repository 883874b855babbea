package main

import (
	"encoding/hex"
	"fmt"

	"github.com/iov-one/quorum/crypto"
	"github.com/spf13/cobra"
)

func keygenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Long: `Generate a new private key and write it to the --key file.

By default the key is random. When --seed is given the key is derived from
that seed using the --path derivation path, so the same seed and path always
produce the same key. This command fails if the private key file already
exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := cmd.Flags().GetString("seed")
			if err != nil {
				return err
			}
			path, err := cmd.Flags().GetString("path")
			if err != nil {
				return err
			}

			key := crypto.GenPrivKeyEd25519()
			if seed != "" {
				raw, err := hex.DecodeString(seed)
				if err != nil {
					return fmt.Errorf("cannot decode seed: %s", err)
				}
				if key, err = crypto.DerivePrivKeyEd25519(raw, path); err != nil {
					return err
				}
			}
			if err := saveKey(c.cfg.Key, key); err != nil {
				return err
			}
			c.log.Sugar().Debugw("key created", "file", c.cfg.Key)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key.PublicKey().Address())
			return err
		},
	}
	cmd.Flags().String("seed", "", "Hex encoded seed to derive the key from.")
	cmd.Flags().String("path", crypto.DefaultDerivationPath, "Derivation path used together with --seed.")
	return cmd
}

func addressCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the hex and bech32 address of the private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := c.signer()
			if err != nil {
				return err
			}
			addr := key.PublicKey().Address()
			bech, err := c.bech32(addr)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", addr, bech)
			return err
		},
	}
}

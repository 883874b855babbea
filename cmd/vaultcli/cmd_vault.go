package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/ioutil"

	"github.com/bytedance/sonic"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/vault"
	"github.com/spf13/cobra"
)

// identityKeySize is the size of randomly generated vault identity keys.
const identityKeySize = 32

func initCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the state with vaults declared in a genesis file",
		Long: `Initialize the state with vaults declared in a genesis file.

The genesis file is a JSON object. Vaults are listed under the "vault" key:

  {"vault": [{"identity_key": "<hex>", "owners": ["<addr>"], "threshold": 1}]}

This command fails if the state was already used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString("genesis")
			if err != nil {
				return err
			}
			opts := quorum.Options{}
			if file != "" {
				raw, err := ioutil.ReadFile(file)
				if err != nil {
					return fmt.Errorf("cannot read genesis file: %s", err)
				}
				if err := sonic.Unmarshal(raw, &opts); err != nil {
					return fmt.Errorf("cannot decode genesis file: %s", err)
				}
			}

			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			id, err := n.genesis(opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "initialized at version %d\n", id.Version)
			return err
		},
	}
	cmd.Flags().String("genesis", "", "Path to the genesis file.")
	return cmd
}

func createVaultCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-vault",
		Short: "Create a new vault",
		Long: `Create a new vault. The address of the signing key is always one of the
owners. The vault address is derived from the identity key, which is random
unless given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawOwners, err := cmd.Flags().GetStringSlice("owners")
			if err != nil {
				return err
			}
			threshold, err := cmd.Flags().GetUint32("threshold")
			if err != nil {
				return err
			}
			rawIdentity, err := cmd.Flags().GetString("identity")
			if err != nil {
				return err
			}

			key, err := c.signer()
			if err != nil {
				return err
			}
			me := key.PublicKey().Address()
			owners := []quorum.Address{me}
			for _, raw := range rawOwners {
				addr, err := c.parseAddress(raw)
				if err != nil {
					return err
				}
				if addr.Equals(me) {
					continue
				}
				owners = append(owners, addr)
			}

			identity := make([]byte, identityKeySize)
			if rawIdentity != "" {
				if identity, err = hex.DecodeString(rawIdentity); err != nil {
					return fmt.Errorf("cannot decode identity key: %s", err)
				}
			} else if _, err := rand.Read(identity); err != nil {
				return fmt.Errorf("cannot generate identity key: %s", err)
			}

			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			res, err := n.deliver(key, &vault.CreateVaultMsg{
				IdentityKey: identity,
				Owners:      owners,
				Threshold:   threshold,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), quorum.Address(res.Data))
			return err
		},
	}
	cmd.Flags().StringSlice("owners", nil, "Comma separated addresses of the other owners.")
	cmd.Flags().Uint32("threshold", 1, "Number of approvals required to execute a proposal.")
	cmd.Flags().String("identity", "", "Hex encoded identity key. Random if not given.")
	return cmd
}

func showVaultCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show-vault <vault>",
		Short: "Print the vault state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := c.parseAddress(args[0])
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			v, err := n.vault(addr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func showOwnedVaultsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show-owned-vaults",
		Short: "Print all vaults the signing key is an owner of",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := c.signer()
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			vaults, err := n.ownedVaults(key.PublicKey().Address())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), vaults)
		},
	}
}

func historyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print all vault notifications, one JSON object per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			events, err := n.journal.Events()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range events {
				raw, err := sonic.Marshal(e)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, string(raw)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"github.com/iov-one/quorum/crypto/bech32"
	"github.com/iov-one/quorum/x/vault"
	"github.com/spf13/cobra"
)

// signer loads the private key used to sign transactions.
func (c *cli) signer() (*crypto.PrivateKey, error) {
	return loadKey(c.cfg.Key)
}

// parseAddress accepts bech32 addresses with the configured prefix and all
// formats understood by quorum.ParseAddress.
func (c *cli) parseAddress(s string) (quorum.Address, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, c.cfg.HRP+"1") {
		raw, err := bech32.DecodeWithPrefix(s, c.cfg.HRP)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %s", s, err)
		}
		addr := quorum.Address(raw)
		if err := addr.Validate(); err != nil {
			return nil, fmt.Errorf("invalid address %q: %s", s, err)
		}
		return addr, nil
	}
	addr, err := quorum.ParseAddress(s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %s", s, err)
	}
	if addr == nil {
		return nil, fmt.Errorf("empty address")
	}
	return addr, nil
}

// vaultFlag returns the address given with the --vault flag.
func (c *cli) vaultFlag(cmd *cobra.Command) (quorum.Address, error) {
	raw, err := cmd.Flags().GetString("vault")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("vault address is required")
	}
	return c.parseAddress(raw)
}

func addVaultFlag(cmd *cobra.Command) {
	cmd.Flags().String("vault", "", "Address of the vault.")
}

// proposalArg returns the address of the proposal with the ordinal given as
// the first argument.
func (c *cli) proposalArg(cmd *cobra.Command, args []string) (quorum.Address, quorum.Address, error) {
	vaultAddr, err := c.vaultFlag(cmd)
	if err != nil {
		return nil, nil, err
	}
	ordinal, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid proposal index %q: %s", args[0], err)
	}
	addr, _ := vault.ProposalAddress(vaultAddr, ordinal)
	return vaultAddr, addr, nil
}

func (c *cli) bech32(addr quorum.Address) (string, error) {
	return addr.Bech32String(c.cfg.HRP)
}

// printJSON writes an indented JSON representation of v.
func printJSON(w io.Writer, v interface{}) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

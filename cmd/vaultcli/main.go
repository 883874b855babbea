/*
Command vaultcli runs multi owner vaults against a local state directory.

Every command that changes the state signs a single transaction with the
private key from --key and commits it. Configuration can be provided with
flags, VAULTCLI_* environment variables or a vaultcli.yaml file in the home
directory.

	$ vaultcli keygen
	$ vaultcli create-vault --owners <addr>,<addr> --threshold 2
	$ vaultcli create-proposal instructions.json --vault <vault>
	$ vaultcli approve 0 --vault <vault>
	$ vaultcli execute 0 --vault <vault>
*/
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// gitHash is set during the compilation time.
var gitHash = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by all commands of a single invocation.
type cli struct {
	v   *viper.Viper
	cfg *Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "vaultcli",
		Short:         "Command line client for multi owner vaults",
		Version:       gitHash,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	fl := root.PersistentFlags()
	fl.String("config", "", "Path to the configuration file. Defaults to vaultcli.yaml in the home directory.")
	fl.String("home", defaultHome(), "Directory holding the state and the event journal.")
	fl.String("key", "", "Path to the private key file. Defaults to key.priv in the home directory.")
	fl.String("log-level", "info", "Log level, one of debug, info, warn, error.")
	fl.String("hrp", defaultHRP, "Human readable part of bech32 addresses.")
	fl.String("chain-id", defaultChainID, "Chain ID transactions are signed for.")
	for key, name := range map[string]string{
		"home":      "home",
		"key":       "key",
		"log_level": "log-level",
		"hrp":       "hrp",
		"chain_id":  "chain-id",
	} {
		if err := c.v.BindPFlag(key, fl.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		file, err := fl.GetString("config")
		if err != nil {
			return err
		}
		return c.init(file)
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		c.close()
	}

	root.AddCommand(
		keygenCmd(c),
		addressCmd(c),
		initCmd(c),
		createVaultCmd(c),
		showVaultCmd(c),
		showOwnedVaultsCmd(c),
		createProposalCmd(c),
		approveCmd(c),
		approveAllCmd(c),
		executeCmd(c),
		showProposalCmd(c),
		listProposalsCmd(c),
		historyCmd(c),
	)
	return root
}

func (c *cli) init(configFile string) error {
	cfg, err := loadConfig(c.v, configFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger
	return nil
}

func (c *cli) close() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

func (c *cli) openNode() (*node, error) {
	return openNode(c.cfg, newTMLogger(c.log))
}

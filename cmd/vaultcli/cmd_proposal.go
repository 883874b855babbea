package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/bytedance/sonic"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/vault"
	"github.com/spf13/cobra"
)

// instructionSpec is a single entry of an instructions file. The message is
// given either as JSON in Msg, decoded into the type registered for the
// target, or already serialized in Data.
type instructionSpec struct {
	Target   string               `json:"target"`
	Accounts []*vault.AccountMeta `json:"accounts,omitempty"`
	Msg      json.RawMessage      `json:"msg,omitempty"`
	Data     []byte               `json:"data,omitempty"`
}

// readInstructions loads the instructions file. Messages are checked for
// validity, so that mistakes are found before any approval is collected.
func readInstructions(path string, r *vault.InstructionRouter) ([]*vault.Instruction, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read instructions file: %s", err)
	}
	var specs []instructionSpec
	if err := sonic.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("cannot decode instructions file: %s", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no instructions in %q", path)
	}

	res := make([]*vault.Instruction, 0, len(specs))
	for i, s := range specs {
		if len(s.Msg) == 0 {
			res = append(res, &vault.Instruction{Target: s.Target, Accounts: s.Accounts, Data: s.Data})
			continue
		}
		msg, err := r.New(s.Target)
		if err != nil {
			return nil, fmt.Errorf("instruction #%d: %s", i, err)
		}
		if err := sonic.Unmarshal(s.Msg, msg); err != nil {
			return nil, fmt.Errorf("instruction #%d: cannot decode message: %s", i, err)
		}
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("instruction #%d: %s", i, err)
		}
		ins, err := vault.NewInstruction(msg, s.Accounts...)
		if err != nil {
			return nil, fmt.Errorf("instruction #%d: %s", i, err)
		}
		res = append(res, ins)
	}
	return res, nil
}

func createProposalCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-proposal <instructions-file>",
		Short: "Propose instructions to be executed by a vault",
		Long: `Propose instructions to be executed by a vault. The proposer approves the
proposal right away. Instructions are read from a JSON file:

  [
    {"target": "vault/change_threshold", "msg": {"vault": "<hex>", "threshold": 2}},
    {"target": "vault/replace_owners", "msg": {"vault": "<hex>", "owners": ["<hex>"]}}
  ]

Prints the proposal index followed by the proposal address.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultAddr, err := c.vaultFlag(cmd)
			if err != nil {
				return err
			}
			key, err := c.signer()
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			instructions, err := readInstructions(args[0], n.instructions)
			if err != nil {
				return err
			}
			res, err := n.deliver(key, &vault.CreateProposalMsg{
				Vault:        vaultAddr,
				Instructions: instructions,
			})
			if err != nil {
				return err
			}
			p, err := n.proposal(res.Data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", p.Ordinal, p.Address)
			return err
		},
	}
	addVaultFlag(cmd)
	return cmd
}

func approveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <index>",
		Short: "Approve a proposal of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proposal, err := c.proposalArg(cmd, args)
			if err != nil {
				return err
			}
			key, err := c.signer()
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			if _, err := n.deliver(key, &vault.ApproveMsg{Proposal: proposal}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "approved %s\n", proposal)
			return err
		},
	}
	addVaultFlag(cmd)
	return cmd
}

func approveAllCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve-all",
		Short: "Approve all pending proposals of a vault",
		Long: `Approve every proposal of the vault that is not executed, not stale and not
yet approved by the signing key. Each approval is a separate transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vaultAddr, err := c.vaultFlag(cmd)
			if err != nil {
				return err
			}
			key, err := c.signer()
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			v, err := n.vault(vaultAddr)
			if err != nil {
				return err
			}
			me, ok := v.OwnerIndex(key.PublicKey().Address())
			if !ok {
				return fmt.Errorf("%s is not an owner of vault %s", key.PublicKey().Address(), vaultAddr)
			}
			proposals, err := n.proposals(vaultAddr)
			if err != nil {
				return err
			}
			var approved int
			for _, p := range proposals {
				if p.IsExecuted() || p.IsStale(v) || p.HasApproved(me) {
					continue
				}
				if _, err := n.deliver(key, &vault.ApproveMsg{Proposal: p.Address}); err != nil {
					return fmt.Errorf("proposal %d: %s", p.Ordinal, err)
				}
				approved++
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "approved %d proposals\n", approved)
			return err
		},
	}
	addVaultFlag(cmd)
	return cmd
}

func executeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute <index>",
		Short: "Execute an approved proposal of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proposal, err := c.proposalArg(cmd, args)
			if err != nil {
				return err
			}
			rawAccounts, err := cmd.Flags().GetStringSlice("accounts")
			if err != nil {
				return err
			}
			accounts := make([]quorum.Address, 0, len(rawAccounts))
			for _, raw := range rawAccounts {
				addr, err := c.parseAddress(raw)
				if err != nil {
					return err
				}
				accounts = append(accounts, addr)
			}
			key, err := c.signer()
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			res, err := n.deliver(key, &vault.ExecuteMsg{
				Proposal:          proposal,
				RemainingAccounts: accounts,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "executed %s\n", proposal); err != nil {
				return err
			}
			if res.Log != "" {
				_, err = fmt.Fprintln(out, res.Log)
			}
			return err
		},
	}
	addVaultFlag(cmd)
	cmd.Flags().StringSlice("accounts", nil, "Comma separated addresses of accounts made available to the instructions.")
	return cmd
}

// proposalView is the printed form of a proposal.
type proposalView struct {
	Ordinal      uint64               `json:"ordinal"`
	Address      quorum.Address       `json:"address"`
	Proposer     quorum.Address       `json:"proposer"`
	Approvals    int                  `json:"approvals"`
	Threshold    uint32               `json:"threshold"`
	ApprovedBy   []quorum.Address     `json:"approved_by"`
	Executed     bool                 `json:"executed"`
	Executor     quorum.Address       `json:"executor,omitempty"`
	Stale        bool                 `json:"stale"`
	CreatedAt    quorum.UnixTime      `json:"created_at"`
	Instructions []*vault.Instruction `json:"instructions,omitempty"`
}

func newProposalView(v *vault.Vault, p *vault.Proposal) proposalView {
	view := proposalView{
		Ordinal:      p.Ordinal,
		Address:      p.Address,
		Proposer:     p.Proposer,
		Approvals:    p.ApprovalCount(),
		Threshold:    v.Threshold,
		ApprovedBy:   []quorum.Address{},
		Executed:     p.IsExecuted(),
		Executor:     p.Executor,
		Stale:        p.IsStale(v),
		CreatedAt:    p.CreatedAt,
		Instructions: p.Instructions,
	}
	// Approval flags refer to the owner set the proposal was created
	// with, which is only known while the proposal is not stale.
	if !view.Stale {
		for i, owner := range v.Owners {
			if p.HasApproved(i) {
				view.ApprovedBy = append(view.ApprovedBy, owner)
			}
		}
	}
	return view
}

func showProposalCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-proposal <index>",
		Short: "Print a proposal of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultAddr, proposal, err := c.proposalArg(cmd, args)
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			v, err := n.vault(vaultAddr)
			if err != nil {
				return err
			}
			p, err := n.proposal(proposal)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newProposalView(v, p))
		},
	}
	addVaultFlag(cmd)
	return cmd
}

func listProposalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-proposals",
		Short: "Print all proposals of a vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vaultAddr, err := c.vaultFlag(cmd)
			if err != nil {
				return err
			}
			n, err := c.openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			v, err := n.vault(vaultAddr)
			if err != nil {
				return err
			}
			proposals, err := n.proposals(vaultAddr)
			if err != nil {
				return err
			}
			views := make([]proposalView, len(proposals))
			for i, p := range proposals {
				views[i] = newProposalView(v, p)
				views[i].Instructions = nil
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}
	addVaultFlag(cmd)
	return cmd
}

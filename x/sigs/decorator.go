package sigs

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// RegisterQuery exposes the signer bucket under "/auth".
func RegisterQuery(qr quorum.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures of a transaction and puts the signer
// conditions in the context for Authenticate.
type Decorator struct {
	optional bool
}

var _ quorum.Decorator = Decorator{}

// NewDecorator returns a decorator rejecting transactions without a valid
// signature.
func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a decorator that lets unsigned transactions
// through with no signer in the context.
func (d Decorator) AllowMissingSigs() Decorator {
	d.optional = true
	return d
}

func (d Decorator) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Check(ctx, db, tx)
}

func (d Decorator) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	ctx, err := d.authenticate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, db, tx)
}

func (d Decorator) authenticate(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (quorum.Context, error) {
	var signers []quorum.Condition
	if stx, ok := tx.(SignedTx); ok {
		var err error
		signers, err = VerifyTxSignatures(db, stx, quorum.GetChainID(ctx))
		if err != nil {
			return nil, errors.Wrap(err, "cannot verify signatures")
		}
	}
	if len(signers) == 0 {
		if !d.optional {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "%T carries no signature", tx)
		}
		return ctx, nil
	}
	return withSigners(ctx, signers), nil
}

package quorumtest

import "github.com/iov-one/quorum"

// Decorator counts its calls and passes them on to the next handler. A set
// CheckErr or DeliverErr is returned instead of calling next.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	checks     int
	deliveries int
}

var _ quorum.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	d.checks++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	d.deliveries++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int   { return d.checks }
func (d *Decorator) DeliverCallCount() int { return d.deliveries }

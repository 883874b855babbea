package quorumtest

import "github.com/iov-one/quorum"

// Handler is a mock implementation of the quorum.Handler interface.
//
// Each method call is counted. Set CheckErr or DeliverErr to force an error
// response. Set Write to have both methods write a key/value pair to the
// store before returning, which is useful to test atomic execution.
type Handler struct {
	checkCall   int
	CheckResult quorum.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult quorum.DeliverResult
	DeliverErr    error

	Write *quorum.Model
}

var _ quorum.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx) (*quorum.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db quorum.KVStore) error {
	if h.Write == nil {
		return nil
	}
	return db.Set(h.Write.Key, h.Write.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

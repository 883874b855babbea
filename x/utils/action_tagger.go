package utils

import (
	"bytes"

	"github.com/iov-one/quorum"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key holding the path of a delivered message.
const ActionKey = "action"

// ActionTagger tags every successful delivery with action=<message path>, so
// that clients can subscribe to, for example, vault/execute.
type ActionTagger struct{}

var _ quorum.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Checker) (*quorum.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx quorum.Context, db quorum.KVStore, tx quorum.Tx, next quorum.Deliverer) (*quorum.DeliverResult, error) {
	// An undecodable message fails before anything runs.
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = appendTag(res.Tags, common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())})
	return res, nil
}

// appendTag adds tag unless an equal one is already present.
func appendTag(tags []common.KVPair, tag common.KVPair) []common.KVPair {
	for _, t := range tags {
		if bytes.Equal(t.Key, tag.Key) && bytes.Equal(t.Value, tag.Value) {
			return tags
		}
	}
	return append(tags, tag)
}

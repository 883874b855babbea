package quorumtest

import "github.com/iov-one/quorum"

// Tx represents a transaction carrying a single message that is to be
// processed within this transaction.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg quorum.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ quorum.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (quorum.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg represents a message that is routed by path and carries no
// meaningful content.
type Msg struct {
	// RoutePath returned by the path method, consumed by the router.
	RoutePath string `protobuf:"bytes,1,opt,name=route_path,json=routePath,proto3" json:"route_path,omitempty"`
	// Payload is carried along so that serialized messages differ.
	Payload []byte `protobuf:"bytes,2,opt,name=payload,proto3" json:"payload,omitempty"`
}

var _ quorum.Msg = (*Msg)(nil)

func (m *Msg) Reset()         { *m = Msg{} }
func (m *Msg) String() string { return m.RoutePath }
func (*Msg) ProtoMessage()    {}

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return nil
}

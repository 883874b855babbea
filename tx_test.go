package quorum_test

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invalidMsg never passes validation.
type invalidMsg struct {
	quorumtest.Msg
}

func (*invalidMsg) Validate() error {
	return errors.Wrap(errors.ErrEmpty, "always invalid")
}

func TestLoadMsg(t *testing.T) {
	cases := map[string]struct {
		tx      quorum.Tx
		dest    quorum.Msg
		wantMsg quorum.Msg
		wantErr *errors.Error
	}{
		"success": {
			tx:      &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/one", Payload: []byte("x")}},
			dest:    &quorumtest.Msg{},
			wantMsg: &quorumtest.Msg{RoutePath: "test/one", Payload: []byte("x")},
		},
		"message tx": {
			tx:      &quorum.MsgTx{Msg: &quorumtest.Msg{RoutePath: "test/two"}},
			dest:    &quorumtest.Msg{},
			wantMsg: &quorumtest.Msg{RoutePath: "test/two"},
		},
		"transaction contains a nil message": {
			tx:      &quorumtest.Tx{Msg: nil},
			dest:    &quorumtest.Msg{},
			wantErr: errors.ErrInvalidMsg,
		},
		"message tx without a message": {
			tx:      &quorum.MsgTx{},
			dest:    &quorumtest.Msg{},
			wantErr: errors.ErrInvalidMsg,
		},
		"transaction error": {
			tx:      &quorumtest.Tx{Err: errors.ErrInvalidState},
			dest:    &quorumtest.Msg{},
			wantErr: errors.ErrInvalidState,
		},
		"destination of another type": {
			tx:      &quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/one"}},
			dest:    &invalidMsg{},
			wantErr: errors.ErrInvalidType,
		},
		"validation failure": {
			tx:      &quorumtest.Tx{Msg: &invalidMsg{}},
			dest:    &invalidMsg{},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := quorum.LoadMsg(tc.tx, tc.dest)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.wantMsg, tc.dest)
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/path", quorum.GetPath(&quorumtest.Tx{Msg: &quorumtest.Msg{RoutePath: "test/path"}}))
	assert.Equal(t, "(missing)", quorum.GetPath(&quorumtest.Tx{}))
	assert.Equal(t, "(missing)", quorum.GetPath(&quorum.MsgTx{}))
}

func TestMarshal(t *testing.T) {
	msg := &quorumtest.Msg{RoutePath: "test/path", Payload: []byte{1, 2, 3}}
	raw, err := quorum.Marshal(msg)
	require.NoError(t, err)

	var got quorumtest.Msg
	require.NoError(t, quorum.Unmarshal(raw, &got))
	assert.Equal(t, msg, &got)

	err = quorum.Unmarshal([]byte{0xff, 0xff, 0xff}, &got)
	assert.True(t, errors.ErrInvalidInput.Is(err), "%+v", err)
}

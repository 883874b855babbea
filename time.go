package quorum

import (
	"encoding/json"
	"time"

	"github.com/iov-one/quorum/errors"
)

// UnixTime is a second precision timestamp stored as a plain integer in
// protobuf messages. Zero means unset.
type UnixTime int64

func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// String formats the time as RFC3339 in UTC. Unset time is empty.
func (t UnixTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time().UTC().Format(time.RFC3339)
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(int64(t))
}

// UnmarshalJSON accepts null, seconds since epoch or an RFC3339 string. The
// string form is easier to write in genesis files.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*t = 0
		return nil
	}
	var (
		secs int64
		when time.Time
	)
	switch {
	case json.Unmarshal(raw, &secs) == nil:
	case json.Unmarshal(raw, &when) == nil:
		secs = when.Unix()
	default:
		return errors.Wrap(errors.ErrInvalidInput, "invalid time format")
	}
	if secs < 0 {
		return errors.Wrap(errors.ErrInvalidInput, "time before epoch")
	}
	*t = UnixTime(secs)
	return nil
}

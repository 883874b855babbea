package quorum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/quorum/crypto/bech32"
	"github.com/iov-one/quorum/errors"
)

// AddressLength is the size of every address in bytes. It must not change
// once state was written.
var AddressLength = 20

// The data section may contain any byte, including a newline.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,12})/([a-zA-Z0-9_\-]{3,12})/(.+)$`)

// Condition names a capability as "<extension>/<type>/<data>". A
// condition present in the request context authorizes whatever requires its
// address, for example a signature of a key or the derived authority of a
// vault.
type Condition []byte

func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+len(data)+2)
	c = append(c, ext+"/"+typ+"/"...)
	return append(c, data...)
}

// Parse returns the extension, type and data sections.
func (c Condition) Parse() (string, string, []byte, error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.ErrInvalidInput.Newf("condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

// Address returns the hash of the condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

func (c Condition) Equals(other Condition) bool {
	return bytes.Equal(c, other)
}

// String keeps the extension and type readable and prints the data as hex.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("Invalid Condition: %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

func (c Condition) Validate() error {
	if !conditionFormat.Match(c) {
		return errors.ErrInvalidInput.Newf("condition: %X", []byte(c))
	}
	return nil
}

// Address identifies an owner, a vault or a proposal. It is either the
// truncated hash of a condition or a derived address, always AddressLength
// bytes long.
type Address []byte

func (a Address) Equals(other Address) bool {
	return bytes.Equal(a, other)
}

// MarshalJSON writes the uppercase hex form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts any form understood by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "address must be a string")
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes "hex:<hex>", "cond:<condition string>" or
// "bech32:<address>". A string without a prefix is hex. An empty value
// returns a nil address.
func ParseAddress(s string) (Address, error) {
	format, value := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, value = s[:i], s[i+1:]
	}
	if value == "" {
		return nil, nil
	}

	var addr Address
	switch format {
	case "hex":
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInvalidInput, "cannot decode hex")
		}
		addr = raw
	case "bech32":
		_, raw, err := bech32.Decode(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot decode bech32: %s", err)
		}
		addr = raw
	case "cond":
		c, err := parseCondition(value)
		if err != nil {
			return nil, err
		}
		return c.Address(), nil
	default:
		return nil, errors.ErrInvalidType.Newf("unknown address format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}

// parseCondition reads the form printed by Condition.String.
func parseCondition(s string) (Condition, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil, errors.ErrInvalidInput.Newf("condition must have 3 sections, got %d", len(parts))
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return nil, errors.ErrInvalidInput.Newf("condition data: %s", err)
	}
	c := NewCondition(parts[0], parts[1], data)
	return c, c.Validate()
}

func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32String encodes the address with the given human readable part.
func (a Address) Bech32String(hrp string) (string, error) {
	raw, err := bech32.Encode(hrp, a)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInvalidInput.Newf("address must be %d bytes, got %d", AddressLength, len(a))
	}
	return nil
}

// NewAddress returns the truncated sha256 of data, or nil for nil data.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	h := sha256.Sum256(data)
	return h[:AddressLength]
}

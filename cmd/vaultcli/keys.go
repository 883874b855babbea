package main

import (
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/crypto"
	"golang.org/x/crypto/ed25519"
)

// keyPerm is the file permissions for saved private keys
const keyPerm = 0600

// loadKey reads a private key file written by saveKey.
func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	bz, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode private key: %s", err)
	}
	var key crypto.PrivateKey
	if err := quorum.Unmarshal(bz, &key); err != nil {
		return nil, fmt.Errorf("cannot decode private key: %s", err)
	}
	if n := len(key.GetEd25519()); n != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", n)
	}
	return &key, nil
}

// saveKey writes the hex encoded private key. It refuses to overwrite an
// existing file.
func saveKey(path string, key *crypto.PrivateKey) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", path)
	}
	bz, err := quorum.Marshal(key)
	if err != nil {
		return fmt.Errorf("cannot serialize private key: %s", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("cannot create key directory: %s", err)
	}
	return ioutil.WriteFile(path, []byte(hex.EncodeToString(bz)), keyPerm)
}

// Package devseed loads JSON seed files used to pre-populate the in-memory
// mock backends during local development and in the sandbox server.
package devseed

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// LicenseTermsSeedEntry pre-registers a license terms record under a fixed ID.
// Terms is the raw JSON encoding of a license.LicenseTerms value.
type LicenseTermsSeedEntry struct {
	ID    string          `json:"id"`
	Terms json.RawMessage `json:"terms"`
}

// IPAccountSeedEntry pre-sets the nonce for an IP account.
type IPAccountSeedEntry struct {
	IPID  string `json:"ipId"`
	Nonce uint64 `json:"nonce"`
}

// LoadLicenseTermsSeed reads a JSON array of license terms seed entries.
func LoadLicenseTermsSeed(path string) ([]LicenseTermsSeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "devseed: read license terms seed")
	}
	var entries []LicenseTermsSeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "devseed: decode license terms seed")
	}
	return entries, nil
}

// LoadIPAccountSeed reads a JSON array of IP account seed entries.
func LoadIPAccountSeed(path string) ([]IPAccountSeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "devseed: read ip account seed")
	}
	var entries []IPAccountSeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "devseed: decode ip account seed")
	}
	return entries, nil
}

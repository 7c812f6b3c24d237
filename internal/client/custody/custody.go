package custody

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
	"github.com/dmitrijs2005/vaultify/internal/logging"
)

// ExportTransportable returns the base64 form of an extractable key.
func ExportTransportable(key *cryptox.VaultKey) (string, error) {
	raw, err := key.Export()
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(raw)
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ImportTransportable turns the base64 form back into a non-extractable key.
func ImportTransportable(s string) (*cryptox.VaultKey, error) {
	return importEncoded([]byte(s))
}

func importEncoded(encoded []byte) (*cryptox.VaultKey, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(raw, encoded)
	if err != nil {
		memguard.WipeBytes(raw)
		return nil, fmt.Errorf("%w: transport form is not base64", cryptox.ErrInvalidInput)
	}
	key, err := cryptox.ImportVaultKey(raw[:n])
	memguard.WipeBytes(raw)
	return key, err
}

// Custody moves a vault key into a Slot and back.
type Custody struct {
	slot   Slot
	logger logging.Logger
}

func New(slot Slot, logger logging.Logger) *Custody {
	return &Custody{slot: slot, logger: logger.With("module", "custody")}
}

// Stash exports key into the slot. key must be extractable; after a
// successful Stash it no longer is.
func (c *Custody) Stash(key *cryptox.VaultKey) error {
	raw, err := key.Export()
	if err != nil {
		return fmt.Errorf("export vault key: %w", err)
	}
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(encoded, raw)
	memguard.WipeBytes(raw)

	if err := c.slot.Put(encoded); err != nil {
		memguard.WipeBytes(encoded)
		return fmt.Errorf("stash vault key: %w", err)
	}
	c.logger.Info(context.Background(), "vault key stashed for second factor")
	return nil
}

// Resume reads the stashed key exactly once. The slot is empty afterwards
// whether or not the import succeeds.
func (c *Custody) Resume() (*cryptox.VaultKey, error) {
	defer c.slot.Clear()

	encoded, err := c.slot.Take()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(encoded)

	key, err := importEncoded(encoded)
	if err != nil {
		c.logger.Warn(context.Background(), "stashed vault key could not be imported")
		return nil, err
	}
	return key, nil
}

// Discard erases the slot.
func (c *Custody) Discard() {
	if c.slot.Occupied() {
		c.logger.Info(context.Background(), "stashed vault key discarded")
	}
	c.slot.Clear()
}

func (c *Custody) Pending() bool {
	return c.slot.Occupied()
}

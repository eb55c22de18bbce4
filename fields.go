// fields.go: Typed field selectors for encrypting a subset of a record.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
	"go.uber.org/zap"
)

// FieldRef selects one sensitive field of a caller-owned record. Name is
// used only for logging and error context; Value points at the field's
// storage, so encryption and decryption mutate the record in place. Fields
// not referenced are untouched by construction.
type FieldRef struct {
	Name  string
	Value *string
}

// Error code for field selector failures
const ErrCodeNilField = "CRYPTO_NIL_FIELD"

// EncryptFields encrypts each referenced field in place under the master
// key. Unlike decryption there is no graceful degradation here: a record
// must never be written with some fields still in the clear, so the first
// failure aborts and is returned with the field name attached. Fields
// already processed keep their encrypted value.
func (c *Core) EncryptFields(fields ...FieldRef) error {
	for _, f := range fields {
		if f.Value == nil {
			return goerrors.New(ErrCodeNilField, fmt.Sprintf("field %q has no value pointer", f.Name))
		}
		blob, err := c.EncryptString(*f.Value)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		*f.Value = blob
	}
	return nil
}

// DecryptFields decrypts each referenced field in place under the master
// key, degrading gracefully: a field that fails to decrypt keeps its
// previous (still-encrypted) value, the failure is logged, and the
// remaining fields are still processed. One unreadable field must not lose
// access to the rest of the record.
//
// The names of the fields left encrypted are returned for the caller's
// visibility; an empty slice means every field decrypted.
func (c *Core) DecryptFields(fields ...FieldRef) []string {
	var failed []string
	for _, f := range fields {
		if f.Value == nil {
			c.logger.Warn("field decryption skipped",
				zap.String("field", f.Name),
				zap.String("reason", "nil value pointer"))
			failed = append(failed, f.Name)
			continue
		}
		plaintext, err := c.DecryptString(*f.Value)
		if err != nil {
			c.logger.Warn("field decryption failed, leaving field encrypted",
				zap.String("field", f.Name),
				zap.Error(err))
			failed = append(failed, f.Name)
			continue
		}
		*f.Value = plaintext
	}
	return failed
}

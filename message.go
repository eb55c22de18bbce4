// message.go: Authenticated encryption of conversation messages under a match key.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

// EncryptMessage encrypts a short text message under a match key derived by
// DeriveMatchKey. The scheme is identical to the master-key cipher: fresh
// 16-byte nonce per call, AES-256-GCM, blob layout nonce || tag ||
// ciphertext, base64-encoded.
//
// Example:
//
//	key, _ := core.DeriveMatchKey("alice", "bob")
//	blob, err := crypto.EncryptMessage("hello", key)
func EncryptMessage(plaintext string, key MatchKey) (string, error) {
	cipherKey, err := key.cipherKey()
	if err != nil {
		return "", err
	}
	return sealBlob([]byte(plaintext), cipherKey, nil)
}

// DecryptMessage decrypts a blob produced by EncryptMessage. The
// authentication tag is verified before any plaintext is returned; a blob
// encrypted under a different pair's key fails with ErrDecryptionFailed.
//
// Whether a failed decryption is surfaced to the end user or replaced with
// a placeholder is the caller's policy, not this package's.
func DecryptMessage(encryptedText string, key MatchKey) (string, error) {
	cipherKey, err := key.cipherKey()
	if err != nil {
		return "", err
	}
	plaintext, err := openBlob(encryptedText, cipherKey, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

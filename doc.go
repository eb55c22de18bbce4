// Package crypto provides the cryptographic core for pairing and messaging platforms.
//
// This package offers a compact set of primitives for applications that need
// to protect user data at rest and in conversation:
//   - AES-256-GCM authenticated encryption of arbitrary payloads under a
//     long-lived 32-byte master key, with cipher caching
//   - Deterministic, order-independent derivation of a shared symmetric key
//     for an unordered pair of user identifiers (match keys)
//   - Authenticated encryption of conversation messages under a match key
//   - PBKDF2-SHA512 password hashing with per-password salts and
//     constant-time verification
//   - Cryptographically secure tokens, numeric one-time codes, and
//     HMAC-SHA256 signing with constant-time verification
//   - Typed field selectors for encrypting a subset of a record's fields,
//     with skip-and-log degradation on per-field decryption failure
//   - Streaming encryption for large media payloads
//   - Plugin-based external key providers for sourcing secrets from a
//     KMS or HSM at startup
//
// # Quick Start
//
// Construct a Core once at process start and pass it to every component
// that needs cryptography:
//
//	cfg := crypto.Config{
//		MasterKey:     masterKey,     // exactly 32 bytes
//		SigningSecret: signingSecret, // at least 32 bytes
//	}
//	core, err := crypto.NewCore(cfg)
//	if err != nil {
//		log.Fatal(err) // the process must not start with a malformed key
//	}
//
//	blob, err := core.EncryptString("sensitive data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	plaintext, err := core.DecryptString(blob)
//
// # Match Keys
//
// Two parties derive the same conversation key locally, without exchange:
//
//	aliceKey, _ := core.DeriveMatchKey("alice", "bob")
//	bobKey, _ := core.DeriveMatchKey("bob", "alice")
//	// aliceKey == bobKey
//
//	blob, _ := crypto.EncryptMessage("hello", aliceKey)
//	msg, _ := crypto.DecryptMessage(blob, bobKey) // "hello"
//
// # Error Handling
//
// All functions return standard Go errors usable with errors.Is. Decryption
// failures of any cause (tampering, wrong key, truncated or malformed blob)
// satisfy errors.Is(err, crypto.ErrDecryptionFailed); no partial plaintext
// is ever returned. For rich error details, the library integrates with
// github.com/agilira/go-errors.
//
// # Security Considerations
//
//   - Every encryption generates a fresh 16-byte nonce from crypto/rand;
//     the authentication tag is verified before any plaintext is surfaced.
//   - Password hashes and signatures are compared in constant time.
//   - Keys are validated at construction; a malformed key is never padded
//     or truncated.
//   - Key material is never logged; the field helpers log field names and
//     failure causes only.
package crypto

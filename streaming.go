// streaming.go: Streaming encryption/decryption for large media payloads.
//
// This module provides streaming interfaces for encrypting and decrypting
// payloads too large to hold in memory, such as profile photos and message
// attachments, while keeping the AES-GCM guarantees of the blob cipher.
// Data is processed in fixed-size chunks; each chunk is sealed under a
// distinct counter-derived nonce and the stream ends with an explicit
// end-of-stream marker so truncation is detected.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// DefaultChunkSize is the default plaintext chunk size for streaming
// operations (64KB). It balances memory usage with per-chunk overhead.
const DefaultChunkSize = 64 * 1024

// Stream format:
//
//	[4 bytes: magic] [4 bytes: version] [8 bytes: nonce prefix] [4 bytes: chunk size]
//	repeated: [4 bytes: sealed chunk length] [sealed chunk]
//	[4 bytes: zero] — end-of-stream marker
//
// The per-chunk GCM nonce is the 8-byte random prefix followed by a 4-byte
// little-endian chunk counter, so no nonce repeats within a stream.
const (
	streamMagic      = "HMED"
	streamVersion    = uint32(1)
	streamHeaderSize = 4 + 4 + 8 + 4
	streamPrefixSize = 8
	maxChunkSize     = 10 * 1024 * 1024
)

// StreamEncryptor encrypts data written to it and emits the stream format
// to the underlying writer. Close must be called to flush the final chunk
// and write the end-of-stream marker.
type StreamEncryptor struct {
	writer      io.Writer
	gcm         cipher.AEAD
	noncePrefix []byte
	buffer      []byte
	chunkSize   int
	chunkCount  uint32
	closed      bool
}

// StreamDecryptor decrypts the stream format from the underlying reader.
// Read returns io.EOF after the end-of-stream marker; a stream that ends
// without the marker fails with a truncation error.
type StreamDecryptor struct {
	reader      io.Reader
	gcm         cipher.AEAD
	noncePrefix []byte
	chunkSize   int
	chunkCount  uint32
	remaining   []byte
	headerRead  bool
	done        bool
}

// NewStreamEncryptor creates a streaming encryptor with the default chunk
// size, writing to w under the given 32-byte key.
//
// Example:
//
//	out, _ := os.Create("photo.enc")
//	enc, err := crypto.NewStreamEncryptor(out, key)
//	if err != nil {
//		log.Fatal(err)
//	}
//	io.Copy(enc, photoReader)
//	enc.Close()
func NewStreamEncryptor(w io.Writer, key []byte) (*StreamEncryptor, error) {
	return NewStreamEncryptorWithChunkSize(w, key, DefaultChunkSize)
}

// NewStreamEncryptorWithChunkSize creates a streaming encryptor with a
// custom plaintext chunk size between 1 byte and 10MB.
func NewStreamEncryptorWithChunkSize(w io.Writer, key []byte, chunkSize int) (*StreamEncryptor, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		return nil, goerrors.New("CRYPTO_CHUNK_SIZE", "chunk size must be between 1 byte and 10MB")
	}

	gcm, err := newStreamGCM(key)
	if err != nil {
		return nil, err
	}

	noncePrefix := make([]byte, streamPrefixSize)
	if _, err := io.ReadFull(rand.Reader, noncePrefix); err != nil {
		return nil, goerrors.Wrap(err, ErrCodeNonceGen, "failed to generate nonce prefix")
	}

	enc := &StreamEncryptor{
		writer:      w,
		gcm:         gcm,
		noncePrefix: noncePrefix,
		chunkSize:   chunkSize,
		buffer:      make([]byte, 0, chunkSize),
	}

	if err := enc.writeHeader(); err != nil {
		return nil, err
	}

	return enc, nil
}

// newStreamGCM builds the standard-nonce GCM used by the stream format.
// The blob cipher's 16-byte-nonce GCM is not reused here because stream
// nonces are counter-derived, not random.
func newStreamGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeCipherInit, "failed to create AES cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeCipherInit, "failed to create GCM mode")
	}
	return gcm, nil
}

func (e *StreamEncryptor) writeHeader() error {
	header := make([]byte, streamHeaderSize)
	copy(header[0:4], streamMagic)
	binary.LittleEndian.PutUint32(header[4:8], streamVersion)
	copy(header[8:16], e.noncePrefix)
	binary.LittleEndian.PutUint32(header[16:20], uint32(e.chunkSize)) // #nosec G115 -- bounded by maxChunkSize

	if _, err := e.writer.Write(header); err != nil {
		return goerrors.Wrap(err, "CRYPTO_STREAM_WRITE", "failed to write stream header")
	}
	return nil
}

// chunkNonce derives the nonce for chunk n: prefix || little-endian n.
func chunkNonce(prefix []byte, n uint32) []byte {
	nonce := make([]byte, streamPrefixSize+4)
	copy(nonce, prefix)
	binary.LittleEndian.PutUint32(nonce[streamPrefixSize:], n)
	return nonce
}

// Write buffers data and seals full chunks to the underlying writer.
func (e *StreamEncryptor) Write(data []byte) (int, error) {
	if e.closed {
		return 0, goerrors.New("CRYPTO_STREAM_CLOSED", "cannot write to closed encryptor")
	}

	total := 0
	for len(data) > 0 {
		available := e.chunkSize - len(e.buffer)
		n := len(data)
		if n > available {
			n = available
		}

		e.buffer = append(e.buffer, data[:n]...)
		data = data[n:]
		total += n

		if len(e.buffer) == e.chunkSize {
			if err := e.flushChunk(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// Close flushes the final partial chunk and writes the end-of-stream
// marker. It is idempotent.
func (e *StreamEncryptor) Close() error {
	if e.closed {
		return nil
	}

	if len(e.buffer) > 0 {
		if err := e.flushChunk(); err != nil {
			return err
		}
	}

	// End-of-stream marker: a zero chunk length
	var marker [4]byte
	if _, err := e.writer.Write(marker[:]); err != nil {
		return goerrors.Wrap(err, "CRYPTO_STREAM_WRITE", "failed to write end-of-stream marker")
	}

	e.closed = true
	return nil
}

// flushChunk seals the buffered plaintext and writes it as one chunk.
func (e *StreamEncryptor) flushChunk() error {
	if e.chunkCount == ^uint32(0) {
		return goerrors.New("CRYPTO_STREAM_OVERFLOW", "maximum chunk count reached")
	}

	nonce := chunkNonce(e.noncePrefix, e.chunkCount)
	sealed := e.gcm.Seal(nil, nonce, e.buffer, nil) // #nosec G407 -- nonce is a random prefix plus per-chunk counter

	var chunkHeader [4]byte
	binary.LittleEndian.PutUint32(chunkHeader[:], uint32(len(sealed))) // #nosec G115 -- bounded by maxChunkSize plus tag

	if _, err := e.writer.Write(chunkHeader[:]); err != nil {
		return goerrors.Wrap(err, "CRYPTO_STREAM_WRITE", "failed to write chunk header")
	}
	if _, err := e.writer.Write(sealed); err != nil {
		return goerrors.Wrap(err, "CRYPTO_STREAM_WRITE", "failed to write sealed chunk")
	}

	e.chunkCount++
	e.buffer = e.buffer[:0]
	return nil
}

// NewStreamDecryptor creates a streaming decryptor reading the stream
// format from r under the given 32-byte key. The header is read lazily on
// the first Read.
func NewStreamDecryptor(r io.Reader, key []byte) (*StreamDecryptor, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	gcm, err := newStreamGCM(key)
	if err != nil {
		return nil, err
	}

	return &StreamDecryptor{
		reader: r,
		gcm:    gcm,
	}, nil
}

func (d *StreamDecryptor) readHeader() error {
	header := make([]byte, streamHeaderSize)
	if _, err := io.ReadFull(d.reader, header); err != nil {
		return goerrors.Wrap(err, "CRYPTO_STREAM_READ", "failed to read stream header")
	}

	if string(header[0:4]) != streamMagic {
		return goerrors.New("CRYPTO_STREAM_FORMAT", "invalid magic bytes")
	}
	if version := binary.LittleEndian.Uint32(header[4:8]); version != streamVersion {
		return goerrors.New("CRYPTO_STREAM_FORMAT", "unsupported stream version")
	}

	d.noncePrefix = make([]byte, streamPrefixSize)
	copy(d.noncePrefix, header[8:16])

	d.chunkSize = int(binary.LittleEndian.Uint32(header[16:20]))
	if d.chunkSize <= 0 || d.chunkSize > maxChunkSize {
		return goerrors.New("CRYPTO_STREAM_FORMAT", "invalid chunk size in header")
	}

	d.headerRead = true
	return nil
}

// Read decrypts and returns plaintext from the stream. After the
// end-of-stream marker it returns io.EOF.
func (d *StreamDecryptor) Read(p []byte) (int, error) {
	if !d.headerRead {
		if err := d.readHeader(); err != nil {
			return 0, err
		}
	}

	total := 0
	for len(p) > 0 {
		if len(d.remaining) > 0 {
			n := copy(p, d.remaining)
			d.remaining = d.remaining[n:]
			p = p[n:]
			total += n
			continue
		}

		if d.done {
			if total > 0 {
				return total, nil
			}
			return 0, io.EOF
		}

		chunk, err := d.readNextChunk()
		if err != nil {
			return total, err
		}
		d.remaining = chunk
	}

	return total, nil
}

// readNextChunk reads and opens the next chunk. A zero length marks clean
// end of stream; running out of bytes before the marker is truncation.
func (d *StreamDecryptor) readNextChunk() ([]byte, error) {
	var chunkHeader [4]byte
	if _, err := io.ReadFull(d.reader, chunkHeader[:]); err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_STREAM_TRUNCATED", "stream ended before end-of-stream marker")
	}

	sealedSize := binary.LittleEndian.Uint32(chunkHeader[:])
	if sealedSize == 0 {
		d.done = true
		return nil, nil
	}
	if int(sealedSize) > d.chunkSize+d.gcm.Overhead() {
		return nil, goerrors.New("CRYPTO_STREAM_FORMAT", "chunk size exceeds maximum")
	}

	sealed := make([]byte, sealedSize)
	if _, err := io.ReadFull(d.reader, sealed); err != nil {
		return nil, goerrors.Wrap(err, "CRYPTO_STREAM_TRUNCATED", "failed to read sealed chunk")
	}

	nonce := chunkNonce(d.noncePrefix, d.chunkCount)
	d.chunkCount++

	plaintext, err := d.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrCodeAuthFailed, "failed to decrypt chunk")
	}

	return plaintext, nil
}

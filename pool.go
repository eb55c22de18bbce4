// pool.go: Buffer pooling for hot-path cryptographic operations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package crypto

import (
	"sync"
)

// smallBufferPool serves nonce- and key-sized scratch buffers. Buffers are
// zeroed on return so no nonce or key material survives in the pool.
var smallBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, KeySize)
		return &buf
	},
}

// getBuffer retrieves a pooled buffer of the requested size, allocating
// directly when the request exceeds the pooled capacity.
func getBuffer(size int) *[]byte {
	if size <= KeySize {
		buf := smallBufferPool.Get().(*[]byte)
		*buf = (*buf)[:size]
		return buf
	}
	buf := make([]byte, size)
	return &buf
}

// putBuffer zeroes a buffer and returns it to the pool. Oversized buffers
// are dropped for the garbage collector.
func putBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	clearBuffer((*buf)[:cap(*buf)])
	if cap(*buf) == KeySize {
		smallBufferPool.Put(buf)
	}
}

// clearBuffer zeroes buf in place.
func clearBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

package pool

import (
	"sync"
)

// ChunkSize is the size of the buffers handed out by the pool (64KB).
const ChunkSize = 64 * 1024

// ChunkPool manages reusable fixed-size read buffers.
type ChunkPool struct {
	size  int
	chunk *sync.Pool
}

// NewChunkPool creates a pool of buffers of the given size.
// A non-positive size selects ChunkSize.
func NewChunkPool(size int) *ChunkPool {
	if size <= 0 {
		size = ChunkSize
	}
	return &ChunkPool{
		size: size,
		chunk: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Size returns the length of every buffer the pool hands out.
func (p *ChunkPool) Size() int {
	return p.size
}

// Get returns a full-length buffer from the pool.
// The caller is responsible for calling Put to return the buffer to the pool.
func (p *ChunkPool) Get() []byte {
	bufPtr := p.chunk.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns a buffer to the pool.
// Buffers of a different capacity are dropped to avoid pooling foreign slices.
func (p *ChunkPool) Put(buf []byte) {
	if cap(buf) != p.size {
		return
	}
	buf = buf[:p.size]
	p.chunk.Put(&buf)
}

// Global chunk pool instance for use throughout the module.
var globalChunkPool = NewChunkPool(ChunkSize)

// GetChunk returns a ChunkSize buffer from the global pool.
func GetChunk() []byte {
	return globalChunkPool.Get()
}

// PutChunk returns a buffer to the global pool.
func PutChunk(buf []byte) {
	globalChunkPool.Put(buf)
}

// Package pool provides reusable read buffers.
//
// The sniffer fills one chunk per upload; pooling the scratch buffer keeps
// concurrent uploads from allocating a fresh chunk-sized slice each time.
package pool

// Package buffer is the lowest storage layer: the set of code-unit
// vectors that every Piece's (BufferIndex, Start, Length) addresses.
//
// # Growth
//
// Buffer 0 only ever grows, at the end, via Append. Buffers 1..N are
// fixed at construction (typically the initial file content, split
// however the caller likes) and never mutate again. This lets a
// Piece's (Start, Length) be treated as permanently valid once
// created: nothing shifts underneath it.
//
//	pool := buffer.New("initial file text\n")
//	start, n := pool.Append("typed text")
//	pool.Text(0, start, n) // "typed text"
//	pool.Text(1, 0, 7)     // "initial"
package buffer

// Package redisserver implements a RESP-protocol server backed by
// FlashKV's in-memory storage engine.
//
// Each accepted connection runs its own goroutine over a drain-then-read
// loop: the incremental parser in internal/resp consumes everything
// already buffered (enabling pipelining) before the connection suspends
// on another socket read. No shard lock from internal/storage is ever
// held across a suspension point.
package redisserver

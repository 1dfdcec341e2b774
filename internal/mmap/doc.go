// Package mmap maps dataset files read-only into memory.
//
// The local blob store reads whole datasets through a Mapping so that large
// CSV or JSON files are parsed without an intermediate copy. Unix platforms
// use mmap(2) and honor access hints through madvise(2); Windows uses
// MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent; the slice
// returned by Bytes must not be used after Close.
package mmap

// Package arena holds the per-run bookkeeping for the reachability ordering.
//
// One Item exists per input element and is addressed by the element's input
// index. Processed flags live in a bitset next to the item slice so the
// ordering loop can scan them without touching item memory.
//
// # Lifetime
//
// An Arena is owned by exactly one ordering run and discarded with it. It is
// not safe for concurrent use.
package arena

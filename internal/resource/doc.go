// Package resource gates clustering runs on memory and concurrency budgets.
//
// A run reserves an estimate of its working-set size before it allocates
// and holds a run slot for its duration. Both reservations are released
// together by the function Admit returns.
package resource

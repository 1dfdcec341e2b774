// Package progress reports completion of long-running clustering work.
//
// A Sink receives completion fractions in [0, 1]. Tracker composes sinks into
// a weighted tree so that a run made of several phases reports one overall
// fraction; LogSink turns reports into throttled structured log lines.
//
// # Usage
//
//	root := progress.NewTracker("cluster", func(f float64) { fmt.Printf("%.0f%%\n", f*100) })
//	order := root.Child("order by reachability", 5)
//	extract := root.Child("detect clusters", 5)
//
//	order.Report(0.5) // prints 25%
//	order.Finish()    // prints 50%
//	extract.Finish()  // prints 100%
package progress

// Package reactive provides the small reactive substrate goform builds on:
// Refs (mutable cells), Sources (static value, Ref, or getter), and Effects
// that re-run when the sources they read change.
//
// Dependency tracking is explicit. An effect receives a *Tracker, and every
// source read through it becomes a dependency:
//
//	count := reactive.NewRef(1)
//	double := reactive.Getter(func(tr *reactive.Tracker) int { return count.Read(tr) * 2 })
//
//	e := reactive.WatchEffect(func(tr *reactive.Tracker) {
//		fmt.Println(reactive.Read(tr, double))
//	})
//	defer e.Stop()
//
//	count.Set(2) // prints 4
//
// Effects are executed by a Scheduler, never concurrently with each other on
// the same scheduler. Refs themselves are safe for concurrent use.
package reactive

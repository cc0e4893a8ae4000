// Package pipeline runs render jobs through a sequence of steps.
//
// A Job carries one target from its source (a report file or the upstream
// API) to rendered output. Typical pipelines are load or fetch, then save
// to history, then build the view model, then render. Each stage is a Step
// that mutates the Job.
//
// BatchProcessor executes many jobs concurrently with errgroup, bounded by
// a concurrency limit, and returns results in input order.
package pipeline

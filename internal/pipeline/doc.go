// Package pipeline runs the per-URL work of a check and fans it out over
// many URLs.
//
// A Pipeline executes Steps in order against an Outcome: LookupStep asks
// the service for a verdict, SaveStep records it in the history store.
// BatchProcessor runs one fresh pipeline per URL with bounded concurrency
// using errgroup. A failed URL is recorded in its Outcome and never stops
// the rest of the batch.
package pipeline

// Package database provides SQLite-based storage for lookup history.
//
// Every successful lookup can be saved with the submitted URL, the decoded
// result and the time of the check, so earlier verdicts can be listed and
// compared later without asking the service again.
//
// SQLite (via modernc.org/sqlite) keeps the history in a single CGO-free
// file. WAL mode lets the history command read while a batch check writes.
package database

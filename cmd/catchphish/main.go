// Package main provides the entry point for the catchphish CLI.
//
// catchphish sends URLs to a phishing classification service and reports
// whether each one looks reliable, suspicious or not reliable, together
// with the hosting details and the features behind the verdict.
//
// Usage:
//
//	catchphish ui
//	catchphish check <url>...
//	catchphish check --list <file>
//	catchphish history <url>
//
// See --help for all available options.
package main

// main is the entry point for catchphish.
func main() {
	Execute()
}

// Package config provides configuration structures and utilities for catchphish.
// It defines where lookups are sent, how the HTTP client behaves, how
// results are reported and where history is stored, and loads the optional
// .catchphish file and .env overrides.
package config

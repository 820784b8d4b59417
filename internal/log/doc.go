// Package log provides the slog handler used by catchphish.
//
// SecureHandler masks credentials before they reach the output: attributes
// whose key names a credential (cookie, authorization, api_key), values that
// look like tokens, and the userinfo and secret query parameters of URLs.
// URLs themselves are kept because they are what the user is checking.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("sending lookup", "url", "https://user:pw@paypa1.example/?token=x")
//	// url=https://***REDACTED***@paypa1.example/?token=***REDACTED***
package log

// Package lookup implements the single outbound call of catchphish:
// POST /api/url/detailed with a JSON body {"url": <string>}.
//
// The endpoint is treated as an opaque collaborator. The client only knows
// the request shape and decodes the response with model.DecodeLookupResult.
//
// All failures are reported as ErrLookupFailed. The wrapped cause tells the
// three failure modes apart for diagnostics:
//   - ErrTransport: the request never produced a response
//   - ErrHTTPStatus: the endpoint answered with a non-2xx status (see StatusError)
//   - model.ErrDecode: the body did not match the LookupResult shape
//
// Requests can be routed through a SOCKS5 proxy, including an embedded Tor
// daemon managed by EmbeddedTor, so the looked-up URL is not tied to the
// caller's network address.
package lookup

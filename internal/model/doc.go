// Package model defines the data structures exchanged with the phishing
// lookup service and shared by the view, the report writers and the
// history store.
//
// This package contains the following main types:
//   - LookupResult: the decoded response of the lookup endpoint
//   - Prediction: the classification code returned by the classifier
//   - HostInfo: Unicode and ASCII (IDNA) forms of a looked-up host
//
// Results are decoded at the boundary with DecodeLookupResult. A payload that
// does not match the expected shape is rejected with ErrDecode rather than
// producing a partially populated result.
package model

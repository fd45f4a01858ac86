// Package core provides a small, stable facade over Redactable's internal
// detectors and policy engine for external integrations. It re-exports a
// narrow API surface so other programs can depend on a stable import path
// without reaching into internal packages.
//
// Example:
//
//	out, err := core.Redact("mail ada@example.org", "gdpr", "GB")
//	if err != nil { /* handle */ }
//	fmt.Println(out)
//
// Findings round-trip through MarshalFindings and UnmarshalFindings in the
// export shape {kind, value, span:[start,end], confidence, normalized, extras}.
package core

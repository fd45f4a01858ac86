// Package engine rewrites text according to a policy. Findings always carry
// spans into the original text; the shifts caused by length-changing
// replacements are tracked in a ledger so later rules land on the right
// bytes. Run drives detection and rewriting over a batch of documents.
// This package is internal; external consumers should use pkg/core.
package engine

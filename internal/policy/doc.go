// Package policy models declarative redaction policies: a named, versioned,
// ordered list of rules, each binding a detector kind to an action and an
// optional predicate over the finding.
//
// Policies are validated and their predicate regexes compiled when they are
// constructed (New, Builder.Build, Load, Builtin). After that they are
// read-only and safe to share between goroutines.
package policy

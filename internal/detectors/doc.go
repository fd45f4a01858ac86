// Package detectors finds sensitive values in plain text.
//
// Every detector pairs a cheap regular expression prefilter with an
// algorithmic validator (checksum, structural rules or entropy) and reports
// Findings whose spans are byte offsets into the text it was given. A
// Registry runs an ordered set of detectors, isolates failures per detector
// and returns one merged, sorted slice.
package detectors

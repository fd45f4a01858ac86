// Package redactable provides the command-line interface for the Redactable
// tool. It configures subcommands (scan, apply, policies, detectors, etc.),
// parses flags, merges them with local and global config files, and executes
// the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactable/redactable/cmd/redactable"
//	func main() { redactable.Execute() }
package redactable

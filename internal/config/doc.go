// Package config loads Redactable configuration from local and global YAML
// files. It is internal; CLI code maps flags and files into detector, policy
// and engine configuration with flags taking precedence over the local file,
// and the local file over the global one.
package config

// Package files resolves input arguments to files and reads and writes
// them. Files ending in .gz are transparently decompressed on read and
// compressed on write.
package files

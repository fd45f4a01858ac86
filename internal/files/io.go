package files

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrBinary is returned when an input does not look like text.
var ErrBinary = errors.New("binary input")

// IsGzip reports whether path is read and written gzip-compressed.
func IsGzip(path string) bool { return strings.EqualFold(filepath.Ext(path), ".gz") }

// Read returns the whole text of path.
func Read(path string) (string, error) {
	b, err := readBytes(path)
	if err != nil {
		return "", err
	}
	name := path
	if IsGzip(path) {
		name = strings.TrimSuffix(path, filepath.Ext(path))
	}
	if LooksBinary(b) || looksNonTextMIME(name, b) {
		return "", fmt.Errorf("%s: %w", path, ErrBinary)
	}
	return string(b), nil
}

// ReadLines returns the lines of path with their terminators kept, so
// joining them reproduces the input.
func ReadLines(path string) ([]string, error) {
	text, err := Read(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// ReadAll reads r whole, failing on binary content.
func ReadAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if LooksBinary(b) {
		return "", ErrBinary
	}
	return string(b), nil
}

// EachLine calls fn for every line of r, terminator included, until r is
// exhausted or fn fails.
func EachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// SplitLines splits text after every newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Write replaces path with text, keeping the file mode when the file exists.
func Write(path, text string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	data := []byte(text)
	if IsGzip(path) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Rewrite passes the text of path through fn and writes the result back
// when it differs. It reports whether the file changed.
func Rewrite(path string, fn func(string) (string, error)) (bool, error) {
	text, err := Read(path)
	if err != nil {
		return false, err
	}
	out, err := fn(text)
	if err != nil {
		return false, err
	}
	if out == text {
		return false, nil
	}
	if err := Write(path, out); err != nil {
		return false, err
	}
	return true, nil
}

// WouldChange reports whether Rewrite with fn would modify path.
func WouldChange(path string, fn func(string) (string, error)) (bool, error) {
	text, err := Read(path)
	if err != nil {
		return false, err
	}
	out, err := fn(text)
	if err != nil {
		return false, err
	}
	return out != text, nil
}

func readBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if IsGzip(path) {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	return io.ReadAll(r)
}

// LooksBinary reports a NUL byte in the first 800 bytes.
func LooksBinary(b []byte) bool {
	n := min(len(b), 800)
	return bytes.IndexByte(b[:n], 0) >= 0
}

// looksNonTextMIME uses the file extension and a tiny content sniff to skip
// clearly non-text content such as images.
func looksNonTextMIME(path string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

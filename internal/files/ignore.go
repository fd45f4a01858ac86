package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore ensures every pattern is present in .gitignore at repoRoot,
// so audit logs and metric dumps holding scan output are never committed.
// It creates the file if missing. Idempotent.
func AppendIgnore(repoRoot string, patterns ...string) error {
	path := filepath.Join(repoRoot, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	var missing []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" && !existing[p] {
			existing[p] = true
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	var b strings.Builder
	if !endsWithNewline {
		b.WriteByte('\n')
	}
	for _, p := range missing {
		b.WriteString(p + "\n")
	}
	_, err = f.WriteString(b.String())
	return err
}

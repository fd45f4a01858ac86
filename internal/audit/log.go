package audit

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/types"
)

// DefaultPath is where the CLI appends records when --audit is given
// without a value.
const DefaultPath = ".redactable-audit.jsonl"

const scrubbed = "[REDACTED]"

// Record is one JSONL line: what a run found in, and did to, one input.
type Record struct {
	Timestamp     time.Time       `json:"timestamp"`
	RunID         string          `json:"run_id"`
	Command       string          `json:"command"`
	Source        string          `json:"source"`
	Fingerprint   string          `json:"fingerprint"`
	Policy        string          `json:"policy,omitempty"`
	PolicyVersion int             `json:"policy_version,omitempty"`
	Counts        map[string]int  `json:"counts"`
	Replacements  int             `json:"replacements"`
	Failures      []Failure       `json:"failures,omitempty"`
	Findings      []types.Finding `json:"findings"`
}

// Failure is a detector that failed on this input.
type Failure struct {
	Detector string `json:"detector"`
	Error    string `json:"error"`
}

// Input carries what CreateRecord needs about one processed input.
type Input struct {
	Command       string
	Source        string
	Fingerprint   string
	Policy        string
	PolicyVersion int
	Findings      []types.Finding
	Replacements  int
	Failures      []detectors.Result
}

// NewRunID returns an id shared by every record of one invocation.
func NewRunID() string { return uuid.NewString() }

// CreateRecord builds a record. Finding values and normalized forms are
// scrubbed unless keepValues is set.
func CreateRecord(runID string, in Input, keepValues bool) Record {
	counts := make(map[string]int)
	for _, f := range in.Findings {
		counts[f.Kind]++
	}
	var failures []Failure
	for _, r := range in.Failures {
		if !r.OK() {
			failures = append(failures, Failure{Detector: r.Detector, Error: r.Err.Error()})
		}
	}
	findings := in.Findings
	if !keepValues {
		findings = scrubValues(in.Findings)
	}
	if findings == nil {
		findings = []types.Finding{}
	}
	return Record{
		Timestamp:     time.Now().UTC(),
		RunID:         runID,
		Command:       in.Command,
		Source:        in.Source,
		Fingerprint:   in.Fingerprint,
		Policy:        in.Policy,
		PolicyVersion: in.PolicyVersion,
		Counts:        counts,
		Replacements:  in.Replacements,
		Failures:      failures,
		Findings:      findings,
	}
}

// scrubValues returns a copy of findings with the matched text removed.
// This keeps the sensitive values themselves out of the audit log.
func scrubValues(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		out[i].Value = scrubbed
		if f.Normalized != "" {
			out[i].Normalized = scrubbed
		}
	}
	return out
}

// AuditLog appends records to a JSONL file. It is safe for concurrent use.
type AuditLog struct {
	mu      sync.Mutex
	logPath string
}

func NewAuditLog(path string) *AuditLog {
	if path == "" {
		path = DefaultPath
	}
	return &AuditLog{logPath: path}
}

// Path returns the file the log writes to.
func (a *AuditLog) Path() string { return a.logPath }

// Log appends records in order.
func (a *AuditLog) Log(records ...Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Owner-only: records describe where sensitive data was found.
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	for _, record := range records {
		if record.RunID == "" {
			record.RunID = NewRunID()
		}
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return w.Flush()
}

// LoadHistory reads every record, newest first. Lines that fail to decode
// are skipped.
func (a *AuditLog) LoadHistory() ([]Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var record Record
		if err := json.Unmarshal(sc.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

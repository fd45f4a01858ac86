package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/policy"
)

func testRegistry() *detectors.Registry {
	return detectors.NewBuilder().PhoneValidator(detectors.FallbackPhoneValidator{}).Defaults().Build()
}

func TestRun_ScanAndRewrite(t *testing.T) {
	docs := []Document{
		{Source: "a.txt", Text: "mail ada@example.org"},
		{Source: "b.txt", Text: "nothing here"},
		{Source: "c.txt", Text: "SSN 078-05-1120"},
	}
	p, err := policy.Builtin("hipaa")
	require.NoError(t, err)

	res, err := New().Run(context.Background(), Config{Threads: 2}, testRegistry(), p, docs)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, 3, res.DocumentsScanned)

	for i, o := range res.Outcomes {
		assert.Equal(t, docs[i].Source, o.Source, "outcomes keep input order")
		assert.Len(t, o.Fingerprint, 16)
		assert.NoError(t, o.Err)
	}
	assert.True(t, res.Outcomes[0].Changed(docs[0]))
	assert.Equal(t, "mail ***@example.org", res.Outcomes[0].Rewrite.Text)
	assert.False(t, res.Outcomes[1].Changed(docs[1]))
	assert.Equal(t, "SSN [HIPAA-SSN]", res.Outcomes[2].Rewrite.Text)
	assert.Len(t, res.Findings(), 2)
}

func TestRun_DryRunAndFilters(t *testing.T) {
	docs := []Document{{Source: "-", Text: "ada@example.org 078-05-1120"}}
	p, err := policy.Builtin("hipaa")
	require.NoError(t, err)

	res, err := New().Run(context.Background(), Config{DryRun: true, DisableDetectors: "ssn_us"}, testRegistry(), p, docs)
	require.NoError(t, err)
	o := res.Outcomes[0]
	require.Len(t, o.Findings, 1)
	assert.Equal(t, "email", o.Findings[0].Kind)
	assert.Empty(t, o.Rewrite.Applied)

	res, err = New().Run(context.Background(), Config{MinConfidence: 0.99}, testRegistry(), nil, docs)
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes[0].Findings)

	res, err = New().Run(context.Background(), Config{EnableDetectors: "SSN_US"}, testRegistry(), nil, docs)
	require.NoError(t, err)
	require.Len(t, res.Outcomes[0].Findings, 1)
	assert.Equal(t, "ssn_us", res.Outcomes[0].Findings[0].Kind)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := make([]Document, 8)
	for i := range docs {
		docs[i] = Document{Source: fmt.Sprint(i), Text: "x"}
	}
	_, err := New().Run(ctx, Config{Threads: 1}, testRegistry(), nil, docs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_RejectsUnvalidatedPolicy(t *testing.T) {
	_, err := New().Run(context.Background(), Config{}, testRegistry(), &policy.Policy{}, nil)
	assert.ErrorIs(t, err, policy.ErrNotValidated)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "ef46db3751d8e999", Fingerprint(nil))
	assert.Len(t, Fingerprint([]byte("abc")), 16)
	assert.Equal(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abc")))
	assert.NotEqual(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abd")))
}

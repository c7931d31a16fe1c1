package probetrace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manwar/multisect/internal/probetrace"
)

func TestTrace_CanonicalizeIsOrderIndependent(t *testing.T) {
	a := probetrace.Trace{
		SessionID: "s1",
		Events: []probetrace.Event{
			{Kind: probetrace.EventProbeIssued, TargetStub: "t2", CommitIndex: 3, Digest: "dd"},
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 5, Digest: "aa"},
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 0, Digest: "bb"},
		},
	}
	b := probetrace.Trace{
		SessionID: "s1",
		Events: []probetrace.Event{
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 0, Digest: "bb"},
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 5, Digest: "aa"},
			{Kind: probetrace.EventProbeIssued, TargetStub: "t2", CommitIndex: 3, Digest: "dd"},
		},
	}

	ja, err := a.CanonicalJSON()
	require.NoError(t, err)
	jb, err := b.CanonicalJSON()
	require.NoError(t, err)
	require.Equal(t, ja, jb)
}

func TestTrace_HashIsStableAcrossEquivalentOrderings(t *testing.T) {
	a := probetrace.Trace{
		SessionID: "s1",
		Events: []probetrace.Event{
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 0, Digest: "bb"},
			{Kind: probetrace.EventSessionComplete, TargetStub: "t1"},
		},
	}
	b := probetrace.Trace{
		SessionID: "s1",
		Events: []probetrace.Event{
			{Kind: probetrace.EventSessionComplete, TargetStub: "t1"},
			{Kind: probetrace.EventProbeIssued, TargetStub: "t1", CommitIndex: 0, Digest: "bb"},
		},
	}

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	require.Equal(t, ha, hb)
	require.NotEmpty(t, ha)
}

func TestTrace_ValidateRejectsMissingTargetStub(t *testing.T) {
	tr := probetrace.Trace{Events: []probetrace.Event{{Kind: probetrace.EventProbeIssued}}}
	require.Error(t, tr.Validate())
}

func TestComputeTraceHash_EmptyInputIsEmptyHash(t *testing.T) {
	require.Equal(t, "", probetrace.ComputeTraceHash(nil))
}

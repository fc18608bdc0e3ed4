package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	for _, s := range JobStatuses {
		got, err := ParseJobStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"", "RECEIVED", "In_Progress", "done", "canceled"} {
		_, err := ParseJobStatus(bad)
		assert.Error(t, err, bad)
	}
}

func TestJobStatus_Transitions(t *testing.T) {
	allowed := map[JobStatus][]JobStatus{
		JobReceived:   {JobInProgress, JobCompleted, JobCancelled},
		JobInProgress: {JobInProgress, JobCompleted, JobCancelled},
		JobCompleted:  {},
		JobCancelled:  {},
	}

	for _, from := range JobStatuses {
		for _, to := range JobStatuses {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestJobStatus_CancelledReachableFromEveryOpenState(t *testing.T) {
	for _, s := range JobStatuses {
		if s.IsTerminal() {
			continue
		}
		assert.True(t, s.CanTransitionTo(JobCancelled), s)
	}
}

func TestJobStatus_TerminalStates(t *testing.T) {
	assert.True(t, JobCompleted.IsTerminal())
	assert.True(t, JobCancelled.IsTerminal())
	assert.False(t, JobReceived.IsTerminal())
	assert.False(t, JobInProgress.IsTerminal())
}

func TestJobStatus_ScanRejectsUnknownToken(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.Scan([]byte("in_progress")))
	assert.Equal(t, JobInProgress, s)

	assert.Error(t, s.Scan("finished"))
	assert.Error(t, s.Scan(42))

	_, err := JobStatus("bogus").Value()
	assert.Error(t, err)
}

func TestJobStatus_JSON(t *testing.T) {
	var payload struct {
		Status JobStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed"}`), &payload))
	assert.Equal(t, JobCompleted, payload.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"COMPLETED"}`), &payload))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed"}`, string(out))
}

package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string {
	return &s
}

func TestNewBuildStatusInvariant(t *testing.T) {
	_, err := NewBuildStatus(4, "", true, json.Number("0"), nil, "http://x/job/a/4", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuildingAndQueued)

	_, err = NewBuildStatus(4, "", true, json.Number("0"), nil, "http://x/job/a/4", false)
	assert.NoError(t, err)

	_, err = NewBuildStatus(0, "Queued build for a id: 1", false, json.Number("-1"), nil, "http://x/job/a/queued/1", true)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	bad := BuildStatus{Number: 9, Building: true, Queued: true}
	assert.ErrorIs(t, bad.Validate(), ErrBuildingAndQueued)

	good := BuildStatus{Number: 9, Building: true}
	assert.NoError(t, good.Validate())
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		status   BuildStatus
		expected bool
	}{
		{"finished success", BuildStatus{Result: "SUCCESS"}, true},
		{"still building", BuildStatus{Result: "SUCCESS", Building: true}, false},
		{"failure", BuildStatus{Result: "FAILURE"}, false},
		{"lowercase result", BuildStatus{Result: "success"}, false},
		{"empty result", BuildStatus{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.IsSuccess())
		})
	}
}

func TestFriendlyDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration json.Number
		expected string
	}{
		{"45 seconds", "45000", "Took 45 s."},
		{"over 90 seconds switches to minutes", "185000", "Took 3 min."},
		{"exactly 90 seconds stays in seconds", "90000", "Took 90 s."},
		{"unparseable treated as zero", "1.5", "Took 0 s."},
		{"empty treated as zero", "", "Took 0 s."},
		{"queued sentinel", "-1", "Took 0 s."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BuildStatus{Duration: tt.duration}
			assert.Equal(t, tt.expected, s.FriendlyDuration())
		})
	}
}

func TestQueueItemToStatus(t *testing.T) {
	item := QueueItem{
		ID:      7,
		Task:    Task{Name: "build-a", URL: "http://x/job/build-a"},
		Actions: []Action{},
	}

	got := item.ToStatus("build-a")

	assert.Equal(t, 0, got.Number)
	assert.Equal(t, "Queued build for build-a id: 7", got.Result)
	assert.False(t, got.Building)
	assert.Equal(t, json.Number("-1"), got.Duration)
	assert.Empty(t, got.Actions)
	assert.Equal(t, "http://x/job/build-a/queued/7", got.URL)
	assert.True(t, got.Queued)
	require.NoError(t, got.Validate())
}

func TestQueueItemToStatusKeepsParameters(t *testing.T) {
	item := QueueItem{
		ID:   12,
		Task: Task{Name: "build-b", URL: "http://x/job/build-b"},
		Actions: []Action{
			{Parameters: []Param{{Name: "branch", Value: strptr("main")}}},
		},
	}

	got := item.ToStatus("build-b")
	require.Len(t, got.Actions, 1)
	require.Len(t, got.Actions[0].Parameters, 1)
	assert.Equal(t, "branch", got.Actions[0].Parameters[0].Name)
}

func TestSortBuildsDesc(t *testing.T) {
	builds := []Build{
		{Number: 1, URL: "http://x/job/a/1"},
		{Number: 5, URL: "http://x/job/a/5"},
		{Number: 3, URL: "http://x/job/a/3"},
	}

	SortBuildsDesc(builds)

	assert.Equal(t, []int{5, 3, 1}, []int{builds[0].Number, builds[1].Number, builds[2].Number})
}

func TestParamJSONRoundTrip(t *testing.T) {
	// Sensitive parameters arrive without a value field; that must decode to
	// a nil pointer, not an empty string.
	var hidden Param
	require.NoError(t, json.Unmarshal([]byte(`{"name":"token"}`), &hidden))
	assert.Nil(t, hidden.Value)

	var visible Param
	require.NoError(t, json.Unmarshal([]byte(`{"name":"branch","value":"main"}`), &visible))
	require.NotNil(t, visible.Value)
	assert.Equal(t, "main", *visible.Value)

	var empty Param
	require.NoError(t, json.Unmarshal([]byte(`{"name":"note","value":""}`), &empty))
	require.NotNil(t, empty.Value)
	assert.Equal(t, "", *empty.Value)
}

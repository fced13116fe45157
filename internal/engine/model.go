package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrBuildingAndQueued is returned when a build status claims to be both
// running and still waiting in the queue. The server never reports this
// combination; seeing it means the upstream response is malformed.
var ErrBuildingAndQueued = errors.New("build status cannot be both building and queued")

// Task identifies a job inside the pending-build queue.
type Task struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// QueueItem is a pending build request that has not started yet.
type QueueItem struct {
	Actions []Action `json:"actions"`
	Task    Task     `json:"task"`
	ID      int64    `json:"id"`
}

// Queue is a full snapshot of the server's pending-build queue.
type Queue struct {
	Items []QueueItem `json:"items"`
}

// Build is a reference to a completed or in-progress build of a job.
type Build struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// Job is a job's build-history summary.
type Job struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	NextBuildNumber int        `json:"nextBuildNumber"`
	Builds          []Build    `json:"builds"`
	QueueItem       *QueueItem `json:"queueItem,omitempty"`
	LastBuild       *Build     `json:"lastBuild,omitempty"`
	FirstBuild      *Build     `json:"firstBuild,omitempty"`
}

// Param is a single build parameter. Value is nil for sensitive parameters
// whose values the server hides (password parameters never carry a value).
type Param struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// Action wraps zero or more build parameters. A status may carry no actions
// at all, or several.
type Action struct {
	Parameters []Param `json:"parameters,omitempty"`
}

// BuildStatus is a point-in-time snapshot of a build or queued item.
//
// Duration is the wire value as received; it is a count of milliseconds when
// the server reports one, but display code must tolerate values that do not
// parse as integers. Queued is derived locally and never set from wire data.
type BuildStatus struct {
	Number   int         `json:"number"`
	Result   string      `json:"result"`
	Building bool        `json:"building"`
	Duration json.Number `json:"duration"`
	Actions  []Action    `json:"actions"`
	URL      string      `json:"url"`
	Queued   bool        `json:"queued,omitempty"`
}

// NewBuildStatus constructs a validated BuildStatus.
func NewBuildStatus(number int, result string, building bool, duration json.Number, actions []Action, url string, queued bool) (BuildStatus, error) {
	s := BuildStatus{
		Number:   number,
		Result:   result,
		Building: building,
		Duration: duration,
		Actions:  actions,
		URL:      url,
		Queued:   queued,
	}
	if err := s.Validate(); err != nil {
		return BuildStatus{}, err
	}
	return s, nil
}

// Validate checks the building/queued exclusivity invariant.
func (s BuildStatus) Validate() error {
	if s.Building && s.Queued {
		return fmt.Errorf("build %d: %w", s.Number, ErrBuildingAndQueued)
	}
	return nil
}

// IsSuccess reports whether the build finished with result SUCCESS.
func (s BuildStatus) IsSuccess() bool {
	return !s.Building && s.Result == "SUCCESS"
}

// FriendlyDuration renders the build duration for humans. An unparseable
// duration counts as zero; this is display-only and never affects matching.
func (s BuildStatus) FriendlyDuration() string {
	ms, err := strconv.ParseInt(s.Duration.String(), 10, 64)
	if err != nil {
		ms = 0
	}
	secs := ms / 1000
	if secs <= 90 {
		return fmt.Sprintf("Took %d s.", secs)
	}
	return fmt.Sprintf("Took %d min.", secs/60)
}

// ToStatus derives a synthetic BuildStatus for a pending queue item. Queued
// items have no build number or duration yet; the URL points at a synthetic
// queued location under the task's job URL.
func (i QueueItem) ToStatus(job string) BuildStatus {
	return BuildStatus{
		Number:   0,
		Result:   fmt.Sprintf("Queued build for %s id: %d", job, i.ID),
		Building: false,
		Duration: json.Number("-1"),
		Actions:  i.Actions,
		URL:      i.Task.URL + "/queued/" + strconv.FormatInt(i.ID, 10),
		Queued:   true,
	}
}

// SortBuildsDesc orders builds by number, highest first. Build numbers are
// unique per job, so ties cannot occur.
func SortBuildsDesc(builds []Build) {
	sort.Slice(builds, func(a, b int) bool {
		return builds[a].Number > builds[b].Number
	})
}

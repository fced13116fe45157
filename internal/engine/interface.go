package engine

import "context"

// BuildResult represents the result of a CI build trigger
type BuildResult struct {
	Success  bool   `json:"success"`
	BuildID  string `json:"build_id,omitempty"`
	BuildURL string `json:"build_url,omitempty"`
	Message  string `json:"message"`
}

// CIEngine is an interface for CI engines
type CIEngine interface {
	// TriggerBuild triggers a build for the given job with the provided parameters
	TriggerBuild(ctx context.Context, jobName string, params map[string]string) (*BuildResult, error)

	// StatusesMatching finds the job's pending and historical builds that were
	// started with exactly the expected parameter set, newest first. Queued
	// items come before recorded builds; recorded builds are ordered by build
	// number descending. Any failing sub-fetch fails the whole call.
	StatusesMatching(ctx context.Context, jobName string, expectedParams map[string]string) (*StatusIter, error)
}

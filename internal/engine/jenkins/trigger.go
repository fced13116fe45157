package jenkins

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"buildwatch/internal/engine"
	"buildwatch/internal/metrics"
)

// Engine implements engine.CIEngine against a Jenkins server.
type Engine struct {
	client *Client
}

// NewEngine creates a new Jenkins engine backed by the given client.
func NewEngine(client *Client) *Engine {
	return &Engine{
		client: client,
	}
}

func validateJobName(jobName string) error {
	if jobName == "" {
		return fmt.Errorf("job name cannot be empty")
	}
	// Path traversal and nested paths would break the /job/{name} URLs
	if strings.Contains(jobName, "..") || strings.Contains(jobName, "/") {
		return fmt.Errorf("invalid job name format: %s", jobName)
	}
	return nil
}

// TriggerBuild triggers a Jenkins build for the given job with the provided parameters
func (e *Engine) TriggerBuild(ctx context.Context, jobName string, params map[string]string) (*engine.BuildResult, error) {
	if err := validateJobName(jobName); err != nil {
		return &engine.BuildResult{
			Success: false,
			Message: "Invalid job name",
		}, err
	}

	// Parameterized builds go through a different endpoint and carry the
	// parameters as form fields. Plain builds still need a "json" form field
	// with an empty build configuration for the Stapler servlet.
	buildPath := fmt.Sprintf("/job/%s/build", url.PathEscape(jobName))
	formData := url.Values{}
	if len(params) > 0 {
		buildPath = fmt.Sprintf("/job/%s/buildWithParameters", url.PathEscape(jobName))
		for k, v := range params {
			formData.Set(k, v)
		}
	} else {
		formData.Set("json", "{}")
	}

	buildID, buildURL, err := e.client.postForm(ctx, buildPath, formData)
	if err != nil {
		metrics.RecordTrigger(jobName, "failed")
		return &engine.BuildResult{
			Success: false,
			Message: fmt.Sprintf("Failed to trigger Jenkins build: %v", err),
		}, err
	}

	metrics.RecordTrigger(jobName, "success")
	return &engine.BuildResult{
		Success:  true,
		Message:  fmt.Sprintf("Successfully triggered Jenkins build for job %s", jobName),
		BuildID:  buildID,
		BuildURL: buildURL,
	}, nil
}

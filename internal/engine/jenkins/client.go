package jenkins

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"buildwatch/internal/config"
	"buildwatch/internal/engine"
	"buildwatch/internal/logger"
)

// Client talks to the Jenkins HTTP/JSON API. All requests carry the
// connection's basic-auth credentials (username + API token).
type Client struct {
	url      string
	username string
	token    string
	client   *http.Client
}

// NewClient creates a new Jenkins client instance
func NewClient(cfg config.JenkinsConfig) *Client {
	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	return &Client{
		// Trailing slash would produce double slashes in request paths
		url:      strings.TrimSuffix(cfg.URL, "/"),
		username: cfg.Username,
		token:    cfg.Token,
		client:   client,
	}
}

// setAuth attaches the basic-auth header Jenkins expects (username:token).
func (c *Client) setAuth(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.username + ":" + c.token))
	req.Header.Set("Authorization", "Basic "+auth)
}

// doRequest sends a request to the Jenkins API and returns the raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	fullURL := c.url + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Jenkins API request failed", "status", resp.Status, "body", string(respBody), "url", fullURL)
		return nil, formatJenkinsError(resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// getJSON issues a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// GetQueue fetches the global pending-build queue.
func (c *Client) GetQueue(ctx context.Context) (engine.Queue, error) {
	var q engine.Queue
	if err := c.getJSON(ctx, "/queue/api/json", &q); err != nil {
		return engine.Queue{}, err
	}
	return q, nil
}

// GetJob fetches the build-history summary for a job.
func (c *Client) GetJob(ctx context.Context, jobName string) (engine.Job, error) {
	var j engine.Job
	path := fmt.Sprintf("/job/%s/api/json", url.PathEscape(jobName))
	if err := c.getJSON(ctx, path, &j); err != nil {
		return engine.Job{}, err
	}
	return j, nil
}

// GetBuild fetches the status snapshot for one numbered build. The snapshot
// is validated before being returned; a malformed one is an error, not a
// silently coerced value.
func (c *Client) GetBuild(ctx context.Context, jobName string, number int) (engine.BuildStatus, error) {
	var s engine.BuildStatus
	path := fmt.Sprintf("/job/%s/%d/api/json", url.PathEscape(jobName), number)
	if err := c.getJSON(ctx, path, &s); err != nil {
		return engine.BuildStatus{}, err
	}
	if err := s.Validate(); err != nil {
		return engine.BuildStatus{}, err
	}
	return s, nil
}

// postForm sends a form-encoded POST to a build-trigger endpoint and returns
// the build ID and URL extracted from the Location header. Jenkins expects
// form data for both plain and parameterized triggers, plus a CSRF crumb.
func (c *Client) postForm(ctx context.Context, buildPath string, formData url.Values) (string, string, error) {
	fullURL := c.url + buildPath

	crumbField, crumbValue, err := c.getCrumb(ctx)
	if err != nil {
		logger.Warn("Failed to get CSRF crumb, proceeding without it", "error", err)
	}
	if crumbField != "" && crumbValue != "" {
		// Some Jenkins versions want the crumb in the form, some in a header
		formData.Set(crumbField, crumbValue)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setAuth(req)
	if crumbField != "" && crumbValue != "" {
		req.Header.Set(crumbField, crumbValue)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("Jenkins build request failed", "status", resp.Status, "body", string(respBody), "url", fullURL)
		return "", "", formatJenkinsError(resp.StatusCode, string(respBody))
	}

	buildID, buildURL := c.extractBuildInfo(resp.Header.Get("Location"), buildPath)
	return buildID, buildURL, nil
}

// getCrumb retrieves the CSRF crumb Jenkins requires for POST requests.
func (c *Client) getCrumb(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/crumbIssuer/api/json", nil)
	if err != nil {
		return "", "", err
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to get crumb: %s", resp.Status)
	}

	var crumbData struct {
		Crumb             string `json:"crumb"`
		CrumbRequestField string `json:"crumbRequestField"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&crumbData); err != nil {
		return "", "", err
	}

	crumbField := crumbData.CrumbRequestField
	if crumbField == "" {
		crumbField = "Jenkins-Crumb"
	}
	return crumbField, crumbData.Crumb, nil
}

// extractBuildInfo extracts build ID and URL from the Location header.
// Location format: /job/jobName/buildNumber/ or an absolute URL with that path.
func (c *Client) extractBuildInfo(location, buildPath string) (string, string) {
	if location == "" {
		// No location header; fall back to the job URL derived from buildPath
		parts := strings.Split(strings.TrimPrefix(buildPath, "/job/"), "/")
		if len(parts) > 0 {
			return "", fmt.Sprintf("%s/job/%s/", c.url, parts[0])
		}
		return "", ""
	}

	pathPart := location
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", ""
		}
		pathPart = u.Path
	}

	parts := strings.Split(strings.Trim(pathPart, "/"), "/")
	if len(parts) >= 3 && parts[0] == "job" {
		jobName := parts[1]
		buildNumber := parts[2]
		buildID := jobName + "/" + buildNumber
		buildURL := fmt.Sprintf("%s/job/%s/%s/", c.url, jobName, buildNumber)
		return buildID, buildURL
	}

	return "", ""
}

// formatJenkinsError maps Jenkins API errors to user-friendly messages
// without exposing internal implementation details.
func formatJenkinsError(statusCode int, responseBody string) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("authentication failed: invalid credentials")
	case http.StatusForbidden:
		return fmt.Errorf("access denied: insufficient permissions")
	case http.StatusNotFound:
		return fmt.Errorf("resource not found")
	case http.StatusBadRequest:
		return fmt.Errorf("invalid request")
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("jenkins server error: please try again later")
	default:
		return fmt.Errorf("jenkins api request failed")
	}
}

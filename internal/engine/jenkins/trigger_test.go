package jenkins

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerBuildWithParameters(t *testing.T) {
	var gotCrumbHeader, gotContentType, gotBranch string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crumbIssuer/api/json":
			w.Write([]byte(`{"crumb":"abc123","crumbRequestField":"Jenkins-Crumb"}`))
		case "/job/app/buildWithParameters":
			require.Equal(t, http.MethodPost, r.Method)
			gotContentType = r.Header.Get("Content-Type")
			gotCrumbHeader = r.Header.Get("Jenkins-Crumb")
			require.NoError(t, r.ParseForm())
			gotBranch = r.PostFormValue("branch")
			w.Header().Set("Location", "/job/app/42/")
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	eng := NewEngine(newTestClient(server.URL))

	result, err := eng.TriggerBuild(context.Background(), "app", map[string]string{"branch": "main"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "app/42", result.BuildID)
	assert.Equal(t, server.URL+"/job/app/42/", result.BuildURL)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "abc123", gotCrumbHeader)
	assert.Equal(t, "main", gotBranch)
}

func TestTriggerBuildWithoutParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crumbIssuer/api/json":
			w.WriteHeader(http.StatusNotFound)
		case "/job/app/build":
			require.NoError(t, r.ParseForm())
			// The Stapler servlet needs an empty build configuration
			assert.Equal(t, "{}", r.PostFormValue("json"))
			w.Header().Set("Location", "/job/app/7/")
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	eng := NewEngine(newTestClient(server.URL))

	result, err := eng.TriggerBuild(context.Background(), "app", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "app/7", result.BuildID)
}

func TestTriggerBuildFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crumbIssuer/api/json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	eng := NewEngine(newTestClient(server.URL))

	result, err := eng.TriggerBuild(context.Background(), "app", nil)
	require.Error(t, err)
	assert.False(t, result.Success)
}

func TestTriggerBuildInvalidJobName(t *testing.T) {
	eng := NewEngine(newTestClient("http://localhost:1"))

	tests := []string{"", "a/b", ".."}
	for _, jobName := range tests {
		result, err := eng.TriggerBuild(context.Background(), jobName, nil)
		assert.Error(t, err, "job name %q", jobName)
		assert.False(t, result.Success)
	}
}

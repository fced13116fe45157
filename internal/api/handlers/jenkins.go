package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"buildwatch/internal/api/middleware"
	"buildwatch/internal/engine"
	"buildwatch/internal/logger"
	"buildwatch/internal/storage"
	"buildwatch/internal/storage/models"
)

// JenkinsHandler handles Jenkins-related API requests
type JenkinsHandler struct {
	ciEngine engine.CIEngine
}

// NewJenkinsHandler creates a new JenkinsHandler instance
func NewJenkinsHandler(ciEngine engine.CIEngine) *JenkinsHandler {
	return &JenkinsHandler{
		ciEngine: ciEngine,
	}
}

// BuildRequest is the request body shared by the trigger and status
// endpoints: a job name plus the parameter set the build was (or is to be)
// started with.
type BuildRequest struct {
	Job        string            `json:"job"`
	Parameters map[string]string `json:"parameters"`
}

// BuildStatusResponse is a BuildStatus enriched with derived display fields.
type BuildStatusResponse struct {
	engine.BuildStatus
	Success          bool   `json:"success"`
	FriendlyDuration string `json:"friendly_duration"`
}

func requestAPIKey(r *http.Request) string {
	if apiKey, ok := r.Context().Value(middleware.APIKeyContextKey).(string); ok {
		return apiKey
	}
	return "unknown"
}

func decodeBuildRequest(w http.ResponseWriter, r *http.Request) (*BuildRequest, bool) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("Failed to parse request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}

	if req.Job == "" {
		logger.Error("Job name is required")
		http.Error(w, "Job name is required", http.StatusBadRequest)
		return nil, false
	}
	if len(req.Job) > 255 {
		logger.Error("Job name too long", "length", len(req.Job))
		http.Error(w, "Job name exceeds maximum length of 255 characters", http.StatusBadRequest)
		return nil, false
	}

	if len(req.Parameters) > 100 {
		logger.Error("Too many parameters", "count", len(req.Parameters))
		http.Error(w, "Maximum 100 parameters allowed", http.StatusBadRequest)
		return nil, false
	}
	for key, value := range req.Parameters {
		if len(key) > 255 {
			logger.Error("Parameter key too long", "key", key, "length", len(key))
			http.Error(w, fmt.Sprintf("Parameter key '%s' exceeds maximum length of 255 characters", key), http.StatusBadRequest)
			return nil, false
		}
		if len(value) > 10240 {
			logger.Error("Parameter value too long", "key", key, "length", len(value))
			http.Error(w, fmt.Sprintf("Parameter value for '%s' exceeds maximum length of 10KB", key), http.StatusBadRequest)
			return nil, false
		}
	}

	return &req, true
}

func (h *JenkinsHandler) audit(r *http.Request, status int, operation, job, params, result, errMsg string) {
	entry := models.AuditLog{
		Timestamp: time.Now(),
		APIKey:    requestAPIKey(r),
		Method:    r.Method,
		Path:      r.URL.Path,
		Status:    status,
		Operation: operation,
		JobName:   job,
		Params:    params,
		Result:    result,
		Error:     errMsg,
	}
	if err := storage.InsertAuditLog(entry); err != nil {
		logger.Error("Failed to write audit log", "error", err)
	}
}

// TriggerJenkinsBuild handles the POST /api/v1/trigger/jenkins request
func (h *JenkinsHandler) TriggerJenkinsBuild(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBuildRequest(w, r)
	if !ok {
		return
	}

	result, err := h.ciEngine.TriggerBuild(r.Context(), req.Job, req.Parameters)
	if err != nil {
		logger.Error("Failed to trigger Jenkins build", "error", err, "job", req.Job)
		h.audit(r, http.StatusInternalServerError, "trigger", req.Job, marshalParams(req.Parameters), "failed", err.Error())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		if encErr := json.NewEncoder(w).Encode(result); encErr != nil {
			logger.Error("Failed to encode response", "error", encErr)
		}
		return
	}

	h.audit(r, http.StatusOK, "trigger", req.Job, marshalParams(req.Parameters), "success", "")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// MatchingStatuses handles the POST /api/v1/status/jenkins request. It
// returns the job's queued and historical builds that were started with
// exactly the requested parameter set, newest first.
func (h *JenkinsHandler) MatchingStatuses(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBuildRequest(w, r)
	if !ok {
		return
	}

	iter, err := h.ciEngine.StatusesMatching(r.Context(), req.Job, req.Parameters)
	if err != nil {
		logger.Error("Failed to aggregate build statuses", "error", err, "job", req.Job)
		h.audit(r, http.StatusBadGateway, "status", req.Job, marshalParams(req.Parameters), "failed", err.Error())
		writeErrorWithRequestID(w, r, http.StatusBadGateway, "Failed to fetch build statuses")
		return
	}

	statuses := []BuildStatusResponse{}
	for s, more := iter.Next(); more; s, more = iter.Next() {
		statuses = append(statuses, BuildStatusResponse{
			BuildStatus:      s,
			Success:          s.IsSuccess(),
			FriendlyDuration: s.FriendlyDuration(),
		})
	}

	h.audit(r, http.StatusOK, "status", req.Job, marshalParams(req.Parameters), fmt.Sprintf("%d matched", len(statuses)), "")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"job":      req.Job,
		"statuses": statuses,
	}); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// marshalParams marshals parameters to a JSON string
func marshalParams(params map[string]string) string {
	jsonParams, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(jsonParams)
}

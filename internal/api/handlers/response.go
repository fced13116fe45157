package handlers

import (
	"encoding/json"
	"net/http"

	"buildwatch/internal/api/middleware"
	"buildwatch/internal/logger"
)

// writeErrorWithRequestID writes a standardized error response with optional request ID
func writeErrorWithRequestID(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": http.StatusText(status),
	}

	if r != nil {
		if requestID := middleware.GetRequestID(r); requestID != "" {
			response["request_id"] = requestID
		}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Headers already sent, nothing more to do than log
		logger.Error("Failed to encode error response", "error", err, "status", status, "message", message)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
)

// Index describes the sandbox API at its root path.
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"success": true,
		"message": "Food Ordering sandbox API",
		"data": map[string]string{
			"api":     "/api/v1",
			"docs":    "/swagger/index.html",
			"health":  "/health",
			"path":    r.URL.Path,
			"payment": "sandbox signatures: hex(HMAC-SHA256(providerOrderId|paymentId))",
		},
	}

	json.NewEncoder(w).Encode(response)
}

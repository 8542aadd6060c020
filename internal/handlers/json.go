package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds request bodies; the largest payload is a single item
const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// detach keeps request values but drops cancellation; session state outlives the request
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

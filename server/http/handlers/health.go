package handlers

import (
	"encoding/json"
	"net/http"
)

// Health (liveness): процесс жив, данные не проверяются (для этого /api/health).
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

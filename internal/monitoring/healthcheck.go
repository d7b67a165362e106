package monitoring

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status        string `json:"status"`
	SessionLoaded bool   `json:"sessionLoaded"`
}

func healthCheckHandler(status SessionStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if status != nil {
			resp.SessionLoaded = status.SessionLoaded()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

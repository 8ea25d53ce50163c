package profiles

import (
	"encoding/json"
	"net/http"
)

// Response bodies follow the application convention: the resource under its
// own key on success, an error object with a stable code otherwise.

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type envelope struct {
	Profile  *Profile       `json:"profile,omitempty"`
	Profiles []Profile      `json:"profiles,omitempty"`
	Error    *errorBody     `json:"error,omitempty"`
	Code     string         `json:"code"`
	Meta     map[string]any `json:"meta,omitempty"`
}

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondProfile(w http.ResponseWriter, status int, profile *Profile) {
	respond(w, status, envelope{Profile: profile, Code: "ok"})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respond(w, status, envelope{Code: code, Error: &errorBody{Message: message}})
}

func respondValidation(w http.ResponseWriter, fields map[string]string) {
	respond(w, http.StatusBadRequest, envelope{
		Code:  "validation_failed",
		Error: &errorBody{Message: "invalid profile input", Fields: fields},
	})
}

package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON marshals data before touching the response, so an encoding
// failure still yields a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes an RFC 7807 problem document
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondErrorWithExtras writes an RFC 7807 problem document. extras become
// top-level members next to the standard ones (resource_id on conflicts,
// files already stored by a partial upload) and never override them.
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	problem := make(map[string]interface{}, len(extras)+4)
	for k, v := range extras {
		problem[k] = v
	}
	problem["type"] = problemType(status)
	problem["title"] = http.StatusText(status)
	problem["status"] = status
	if detail != "" {
		problem["detail"] = detail
	}

	payload, err := json.Marshal(problem)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(payload)
}

// problemTypes covers every status the namespace API answers with
var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:          "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.2",
	http.StatusNotFound:              "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.5",
	http.StatusConflict:              "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.10",
	http.StatusRequestEntityTooLarge: "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.14",
	http.StatusUnprocessableEntity:   "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.21",
	http.StatusInternalServerError:   "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.1",
	http.StatusServiceUnavailable:    "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.4",
}

func problemType(status int) string {
	if t, ok := problemTypes[status]; ok {
		return t
	}
	return "about:blank"
}

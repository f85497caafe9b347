package handler

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds request bodies; the largest one is a report selection.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

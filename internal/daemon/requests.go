package daemon

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
)

// RequestFileName is the name of the deferred-provider request file
// inside the daemon's data directory.
const RequestFileName = "request"

// deferredRequest is one client's ask to refresh a deferred provider
// immediately on the next tick, rather than waiting for its turn in a
// schedule the daemon otherwise omits it from.
type deferredRequest struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

// RequestDeferred appends a request for providerName to the request
// file at path, tagged with a fresh correlation ID, and returns that ID.
// The daemon reads only the provider names when it drains the file; the
// IDs are not written to the cache.
func RequestDeferred(path, providerName string) (id string, err error) {
	reqs, _ := readRequests(path)

	id = uuid.NewString()
	reqs = append(reqs, deferredRequest{ID: id, Provider: providerName})

	return id, writeRequests(path, reqs)
}

func readRequests(path string) ([]deferredRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reqs []deferredRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func writeRequests(path string, reqs []deferredRequest) error {
	data, err := json.Marshal(reqs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// drainRequests reads and clears the request file, returning the set of
// distinct provider names requested since the last drain. A missing or
// malformed file is treated as "no requests" rather than an error —
// this is a best-effort optimization, not a load-bearing channel.
func drainRequests(path string) []string {
	reqs, err := readRequests(path)
	if err != nil || len(reqs) == 0 {
		return nil
	}

	os.Remove(path)

	seen := make(map[string]bool)
	var names []string
	for _, r := range reqs {
		if !seen[r.Provider] {
			seen[r.Provider] = true
			names = append(names, r.Provider)
		}
	}
	return names
}

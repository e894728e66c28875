package directory

import (
	"errors"

	"github.com/Graziano10/referral-admin/client"
	"github.com/Graziano10/referral-admin/rank"
)

// ErrStale is returned when a response arrived after a newer request was
// issued. The response was dropped.
var ErrStale = errors.New("directory: stale response discarded")

// Status is the lifecycle of a fetch-backed view.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ListState is the directory listing as last applied.
type ListState struct {
	Status Status
	Query  Query
	Page   *client.ListProfilesResponse // nil unless Loaded
	Err    error                        // set when Errored
}

// DetailState is the profile currently open, if any.
type DetailState struct {
	Status      Status
	ID          string
	Detail      *client.ProfileDetail
	Progression *rank.Progression
	Err         error
}

package model

import "time"

// IncidentKey identifies a (vessel, spill) association.
type IncidentKey struct {
	MMSI    string
	SpillID string
}

// IncidentCandidate pairs a track point with a spill containing it inside
// the causal window.
type IncidentCandidate struct {
	Spill           SpillRecord
	Track           TrackPoint
	TimeToDetection time.Duration // DetectionDate - Timestamp, never negative
}

// NewCandidate builds a candidate and its time to detection.
func NewCandidate(s SpillRecord, p TrackPoint) IncidentCandidate {
	return IncidentCandidate{
		Spill:           s,
		Track:           p,
		TimeToDetection: s.DetectionDate.Sub(p.Timestamp),
	}
}

// Key returns the deduplication key.
func (c IncidentCandidate) Key() IncidentKey {
	return IncidentKey{MMSI: c.Track.MMSI, SpillID: c.Spill.SpillID}
}

// Within reports whether the observation precedes detection by at most window.
func (c IncidentCandidate) Within(window time.Duration) bool {
	return c.TimeToDetection >= 0 && c.TimeToDetection <= window
}

// UniqueIncident is the first candidate seen for an IncidentKey.
type UniqueIncident struct {
	IncidentCandidate
}

// Causal window bounds, in hours.
const (
	MinWindowHours     = 1
	MaxWindowHours     = 168
	DefaultWindowHours = 24
)

// Window converts hours to a duration.
func Window(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}

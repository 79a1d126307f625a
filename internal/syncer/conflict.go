package syncer

import "time"

// conflictTolerance absorbs small clock skew between devices: timestamps
// within one second of each other are treated as equal, and the local
// (current-device) copy wins ties.
const conflictTolerance = time.Second

// remoteWins reports whether the remote preferences copy should replace the
// local one. A nil remote timestamp means the backend has no copy yet.
// The same rule decides both directions, so push and pull can never both
// claim victory for the same pair of timestamps.
func remoteWins(localUpdatedAt time.Time, remoteUpdatedAt *time.Time) bool {
	if remoteUpdatedAt == nil {
		return false
	}
	return remoteUpdatedAt.After(localUpdatedAt.Add(conflictTolerance))
}

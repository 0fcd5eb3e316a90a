package types

import "time"

// ToPOSIXTime converts an HFS-epoch (1904-01-01 00:00 UTC) timestamp to a
// POSIX-epoch time.Time in UTC. Classic-HFS timestamps are local time with
// no recorded zone; callers that care should consult Timestamps.Local and
// treat the UTC result as a documented approximation.
func ToPOSIXTime(hfsSeconds uint32) time.Time {
	return time.Unix(int64(hfsSeconds)-HFSEpochToPOSIXOffset, 0).UTC()
}

// FromPOSIXTime converts a POSIX-epoch time.Time into an HFS-epoch u32
// seconds value. Used by test fixtures that build synthetic catalog
// records.
func FromPOSIXTime(t time.Time) uint32 {
	return uint32(t.Unix() + HFSEpochToPOSIXOffset)
}

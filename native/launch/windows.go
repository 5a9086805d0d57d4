package launch

// Window placement is pseudo-random on purpose: the seed comes from a source
// every replica observes identically (e.g. ledger height mixed with the launch
// id), so all replicas derive the same windows while outsiders cannot
// precompute them far in advance. This is a fairness mechanism, not a
// cryptographic boundary.

// GenerateWindows derives the day's two trading windows from the seed. The
// first window starts early enough to leave room for the maximum gap; the
// second follows after a gap of 12 to 18 hours. Both windows last
// WindowDuration seconds, never overlap, and always fit inside one day.
func GenerateWindows(seed uint64) (window1Start, window2Start int64, err error) {
	window1Start = int64(seed % uint64(DaySeconds-MaxGap-WindowDuration))
	gap := int64(MinGap + (seed>>8)%uint64(MaxGap-MinGap))
	window2Start = window1Start + gap
	// Unreachable given the bounds above, but asserted rather than assumed.
	if window2Start+WindowDuration > DaySeconds {
		return 0, 0, ErrInvalidWindowTimes
	}
	return window1Start, window2Start, nil
}

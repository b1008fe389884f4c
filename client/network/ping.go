package network

import "sort"

const (
	// rttWindow is how many recent round trips the ping average covers
	rttWindow = 10
	// rttOutlierFloor is the round trip, in ms, below which a sample is never an outlier
	rttOutlierFloor = 20
)

// rttSamples keeps the most recent round trip times in milliseconds.
type rttSamples []int64

// add records a round trip and drops the oldest once the window is full.
func (s rttSamples) add(rtt int64) rttSamples {
	s = append(s, rtt)
	if len(s) > rttWindow {
		s = s[len(s)-rttWindow:]
	}
	return s
}

// average is the mean round trip with outliers left out.
func (s rttSamples) average() float64 {
	kept := removeOutlierRTTs(s)
	if len(kept) == 0 {
		return 0
	}
	var sum int64
	for _, rtt := range kept {
		sum += rtt
	}
	return float64(sum) / float64(len(kept))
}

// removeOutlierRTTs drops samples over twice the median that are also above
// rttOutlierFloor.
func removeOutlierRTTs(rtts []int64) []int64 {
	median := medianRTT(rtts)
	kept := make([]int64, 0, len(rtts))
	for _, rtt := range rtts {
		if rtt > 2*median && rtt > rttOutlierFloor {
			continue
		}
		kept = append(kept, rtt)
	}
	return kept
}

func medianRTT(rtts []int64) int64 {
	if len(rtts) == 0 {
		return 0
	}
	sorted := append([]int64(nil), rtts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

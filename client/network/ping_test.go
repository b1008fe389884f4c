package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianRTT(t *testing.T) {
	assert.Equal(t, int64(0), medianRTT(nil))
	assert.Equal(t, int64(20), medianRTT([]int64{30, 10, 20}))
	assert.Equal(t, int64(25), medianRTT([]int64{40, 10, 20, 30}))
}

func TestRemoveOutlierRTTs(t *testing.T) {
	tests := []struct {
		name string
		rtts []int64
		want []int64
	}{
		{
			name: "no outliers",
			rtts: []int64{10, 12, 11},
			want: []int64{10, 12, 11},
		},
		{
			name: "slow sample dropped",
			rtts: []int64{10, 12, 11, 200},
			want: []int64{10, 12, 11},
		},
		{
			name: "small samples are never outliers",
			rtts: []int64{1, 1, 1, 15},
			want: []int64{1, 1, 1, 15},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeOutlierRTTs(tt.rtts))
		})
	}
}

func TestRTTSamples(t *testing.T) {
	var s rttSamples
	assert.Equal(t, 0.0, s.average())

	for i := int64(1); i <= 12; i++ {
		s = s.add(i)
	}
	assert.Len(t, s, rttWindow)
	assert.Equal(t, int64(3), s[0])
	assert.InDelta(t, 7.5, s.average(), 0.001)

	s = s.add(500)
	assert.InDelta(t, 8.0, s.average(), 0.001, "the slow sample is left out")
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputRow_Values(t *testing.T) {
	row := OutputRow{
		JobID1:         1,
		JobID2:         2,
		NumPhases1:     3,
		NumPhases2:     4,
		SimAbs:         0.5,
		SimAbsAggZeros: 0.6,
		SimChannels:    0.7,
		SimPhases:      0.8,
	}
	values := row.Values()
	assert.Len(t, values, len(OutputColumns))
	assert.Equal(t, []any{int64(1), int64(2), 3, 4, 0.5, 0.6, 0.7, 0.8}, values)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name     string
		schedule bool
		serve    bool
		want     runMode
	}{
		{"no flags runs once", false, false, modeOnce},
		{"serve only", false, true, modeServe},
		{"schedule only", true, false, modeSchedule},
		{"schedule with serve keeps the scheduler", true, true, modeSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectMode(tt.schedule, tt.serve))
		})
	}
}

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

func TestStartWithDefaultSchedule(t *testing.T) {
	svc := NewService(func(models.Session) {}, nil)
	defer svc.Stop()

	require.NoError(t, svc.Start(common.NewDefaultConfig().Schedule))
	assert.Error(t, svc.Start(common.NewDefaultConfig().Schedule), "double start is rejected")
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	svc := NewService(func(models.Session) {}, nil)

	err := svc.Start(common.ScheduleConfig{Morning: "not a cron spec", Afternoon: "5 15 * * 1-5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "morning")
}

func TestStopWithoutStart(t *testing.T) {
	svc := NewService(func(models.Session) {}, nil)
	svc.Stop()
	svc.Stop()
}

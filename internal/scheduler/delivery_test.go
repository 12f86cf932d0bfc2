package scheduler

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolaura/ecolaura-api/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStartDisabled(t *testing.T) {
	s := NewDeliveryScheduler(nil, nil, config.SchedulerConfig{
		DeliverySweepEnabled: false,
	}, testLogger())

	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartAndStop(t *testing.T) {
	s := NewDeliveryScheduler(nil, nil, config.SchedulerConfig{
		DeliverySweepEnabled:  true,
		DeliverySweepSchedule: "0 0 8 * * *",
	}, testLogger())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Starting twice is a no-op
	require.NoError(t, s.Start())

	stats := s.Stats()
	assert.Equal(t, true, stats["running"])
	assert.NotEmpty(t, stats["instance_id"])
	assert.Contains(t, stats, "next_run")

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestStartAcceptsFiveFieldSchedule(t *testing.T) {
	s := NewDeliveryScheduler(nil, nil, config.SchedulerConfig{
		DeliverySweepEnabled:  true,
		DeliverySweepSchedule: "0 8 * * *",
	}, testLogger())

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.True(t, s.IsRunning())
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	s := NewDeliveryScheduler(nil, nil, config.SchedulerConfig{
		DeliverySweepEnabled:  true,
		DeliverySweepSchedule: "not a schedule",
	}, testLogger())

	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

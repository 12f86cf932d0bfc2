package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestResolveGoalStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name         string
		deadline     *time.Time
		targetValue  float64
		currentValue float64
		expected     string
	}{
		{
			name:         "reaching the target completes",
			deadline:     &tomorrow,
			targetValue:  10,
			currentValue: 10,
			expected:     models.GoalStatusCompleted,
		},
		{
			name:         "exceeding the target completes",
			deadline:     &tomorrow,
			targetValue:  10,
			currentValue: 15,
			expected:     models.GoalStatusCompleted,
		},
		{
			name:         "reaching the target after the deadline still completes",
			deadline:     &yesterday,
			targetValue:  10,
			currentValue: 10,
			expected:     models.GoalStatusCompleted,
		},
		{
			name:         "below target after the deadline fails",
			deadline:     &yesterday,
			targetValue:  10,
			currentValue: 5,
			expected:     models.GoalStatusFailed,
		},
		{
			name:         "below target before the deadline stays in progress",
			deadline:     &tomorrow,
			targetValue:  10,
			currentValue: 5,
			expected:     models.GoalStatusInProgress,
		},
		{
			name:         "no deadline never fails",
			deadline:     nil,
			targetValue:  10,
			currentValue: 5,
			expected:     models.GoalStatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := &models.SustainabilityGoal{
				TargetValue: tt.targetValue,
				Deadline:    tt.deadline,
				Status:      models.GoalStatusInProgress,
			}
			assert.Equal(t, tt.expected, resolveGoalStatus(goal, tt.currentValue, now))
		})
	}
}

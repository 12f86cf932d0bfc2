package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points   int
		expected int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{1000, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelForPoints(tt.points), "points=%d", tt.points)
	}
}

func TestApplyPoints(t *testing.T) {
	t.Run("crossing a threshold levels up", func(t *testing.T) {
		user := &models.User{SustainabilityPoints: 90, Level: 1}
		leveledUp := ApplyPoints(user, 10)

		assert.True(t, leveledUp)
		assert.Equal(t, 100, user.SustainabilityPoints)
		assert.Equal(t, 2, user.Level)
	})

	t.Run("staying within a level does not", func(t *testing.T) {
		user := &models.User{SustainabilityPoints: 100, Level: 2}
		leveledUp := ApplyPoints(user, 50)

		assert.False(t, leveledUp)
		assert.Equal(t, 150, user.SustainabilityPoints)
		assert.Equal(t, 2, user.Level)
	})

	t.Run("large award can skip levels", func(t *testing.T) {
		user := &models.User{SustainabilityPoints: 0, Level: 1}
		leveledUp := ApplyPoints(user, 250)

		assert.True(t, leveledUp)
		assert.Equal(t, 3, user.Level)
	})
}

func TestDefaultAchievementsHavePredicates(t *testing.T) {
	svc := NewGamificationService(nil, nil, nil, nil, nil, nil, nil, nil, logrus.New())

	for _, def := range DefaultAchievements() {
		_, ok := svc.predicates[def.Name]
		assert.True(t, ok, "no predicate registered for %q", def.Name)
	}
}

func TestEcoWarriorPredicate(t *testing.T) {
	svc := NewGamificationService(nil, nil, nil, nil, nil, nil, nil, nil, logrus.New())
	predicate := svc.predicates["Eco Warrior"]
	require.NotNil(t, predicate)

	earned, err := predicate(context.Background(), &models.User{SustainabilityPoints: 999})
	require.NoError(t, err)
	assert.False(t, earned)

	earned, err = predicate(context.Background(), &models.User{SustainabilityPoints: 1000})
	require.NoError(t, err)
	assert.True(t, earned)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_ProbabilityPrior(t *testing.T) {
	a := Arena{}
	assert.Equal(t, 0.5, a.YesProbability())
	assert.Equal(t, 0.5, a.NoProbability())
}

func TestArena_VoteWeighting(t *testing.T) {
	a := Arena{ID: "a1"}
	a.ApplyTrade(ActionBuy, SideYes, 30, "0xabc")

	assert.Equal(t, 30.0, a.YesVotes)
	assert.Equal(t, 0.0, a.NoVotes)
	assert.Equal(t, 1.0, a.YesProbability())
	assert.Equal(t, 0.0, a.NoProbability())

	a.ApplyTrade(ActionBuy, SideNo, 10, "0xdef")
	assert.InDelta(t, 0.75, a.YesProbability(), 1e-9)
	assert.InDelta(t, 0.25, a.Probability(SideNo), 1e-9)
}

func TestArena_SellDoesNotMoveVotes(t *testing.T) {
	a := Arena{YesVotes: 10, NoVotes: 10}
	a.ApplyTrade(ActionSell, SideYes, 50, "0xabc")

	assert.Equal(t, 10.0, a.YesVotes)
	assert.Equal(t, 10.0, a.NoVotes)
	assert.Equal(t, []string{"0xabc"}, a.Participants)
}

func TestArena_ParticipantsDeduplicated(t *testing.T) {
	a := Arena{}
	a.ApplyTrade(ActionBuy, SideYes, 1, "0xabc")
	a.ApplyTrade(ActionBuy, SideNo, 1, "0xabc")
	a.ApplyTrade(ActionBuy, SideNo, 1, "")
	assert.Equal(t, []string{"0xabc"}, a.Participants)
}

func TestArena_ResolveOnce(t *testing.T) {
	a := Arena{ID: "a1"}
	require.NoError(t, a.Resolve(true))
	require.NotNil(t, a.CorrectAnswer)
	assert.True(t, *a.CorrectAnswer)
	assert.Equal(t, "YES", a.OutcomeLabel())

	err := a.Resolve(false)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.True(t, *a.CorrectAnswer, "answer is immutable once set")
}

func TestArena_TimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		deadline time.Time
		want     string
	}{
		{now.Add(-time.Minute), "Expired"},
		{now, "Expired"},
		{now.Add(2*24*time.Hour + 3*time.Hour + 10*time.Minute), "2d 3h"},
		{now.Add(3*time.Hour + 5*time.Minute), "3h 5m"},
		{now.Add(5*time.Minute + 30*time.Second), "5m"},
	}
	for _, tc := range cases {
		a := Arena{Deadline: tc.deadline}
		assert.Equal(t, tc.want, a.TimeRemaining(now))
	}
}

func TestArena_Countdown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "EXPIRED", Arena{Deadline: now}.Countdown(now))
	assert.Equal(t, "1h 2m 3s", Arena{Deadline: now.Add(time.Hour + 2*time.Minute + 3*time.Second)}.Countdown(now))
	assert.Equal(t, "42s", Arena{Deadline: now.Add(42 * time.Second)}.Countdown(now))
	assert.True(t, Arena{Deadline: now}.Expired(now))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("sports")
	require.NoError(t, err)
	assert.Equal(t, CategorySports, c)

	_, err = ParseCategory("politics")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("7d")
	require.NoError(t, err)
	assert.Equal(t, 84, tf.Points())
	assert.Equal(t, 2*time.Hour, tf.Interval())

	_, err = ParseTimeframe("1y")
	assert.ErrorIs(t, err, ErrUnknownTimeframe)
}

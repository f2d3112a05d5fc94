package session

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

type failingAgent struct {
	name string
	err  error
}

func (a *failingAgent) Name() string          { return a.name }
func (a *failingAgent) SetCounterpart(string) {}
func (a *failingAgent) Reset()                {}
func (a *failingAgent) GenerateResponse(context.Context, string) (string, error) {
	return "", a.err
}

type blockingAgent struct{}

func (blockingAgent) Name() string          { return "Slow" }
func (blockingAgent) SetCounterpart(string) {}
func (blockingAgent) Reset()                {}
func (blockingAgent) GenerateResponse(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func countRole(turns []chat.Turn, role chat.Role) int {
	n := 0
	for _, t := range turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

func TestRunStopsAtTurnBudget(t *testing.T) {
	for _, maxTurns := range []int{1, 2, 5, 8} {
		store := transcript.NewMemoryStore()
		therapist := agent.NewScriptedAgent("Dr. Rivera", "How are you?")
		client := agent.NewScriptedAgent("Alex", "Fine.")

		record, err := NewController(store).Run(context.Background(), therapist, client, Config{MaxTurns: maxTurns}, nil)
		require.NoError(t, err)

		assert.Equal(t, maxTurns, record.NumTurns)
		assert.Equal(t, maxTurns, countRole(record.Messages, chat.RoleClient))
		assert.Equal(t, maxTurns, countRole(record.Messages, chat.RoleTherapist))
		assert.Equal(t, chat.ReasonTurnLimit, record.TerminationReason)

		saved, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, saved, 1, "persisted exactly once")
	}
}

func TestReminderOnlyInFinalTurns(t *testing.T) {
	therapist := agent.NewScriptedAgent("Dr. Rivera", "Go on.")
	client := agent.NewScriptedAgent("Alex", "Okay.")

	_, err := NewController(nil).Run(context.Background(), therapist, client, Config{MaxTurns: 5, ReminderTurnNum: 2}, nil)
	require.NoError(t, err)

	heard := therapist.Heard()
	require.Len(t, heard, 5)
	assert.Equal(t, OpeningMessage("Dr. Rivera"), heard[0])
	for i, msg := range heard {
		hasReminder := strings.Contains(msg, "turns left in the session")
		assert.Equal(t, i >= 3, hasReminder, "therapist message %d: %q", i, msg)
	}
	assert.Equal(t, "Okay.\nModerator: You have 2 turns left in the session. Try to wrap up the conversation.", heard[3])
	assert.True(t, strings.HasSuffix(heard[4], ReminderNotice(1)))
}

func TestThreeTurnScenario(t *testing.T) {
	therapist := agent.NewScriptedAgent("Dr. Rivera", "t1", "t2", "t3")
	client := agent.NewScriptedAgent("Alex", "c1", "c2", "c3")

	var reminders []int
	record, err := NewController(nil).Run(context.Background(), therapist, client, Config{MaxTurns: 3, ReminderTurnNum: 1}, func(e Event) {
		if e.Type == EventReminder {
			reminders = append(reminders, e.TurnsTaken)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []chat.Turn{
		{Role: chat.RoleTherapist, Content: "t1"},
		{Role: chat.RoleClient, Content: "c1"},
		{Role: chat.RoleTherapist, Content: "t2"},
		{Role: chat.RoleClient, Content: "c2"},
		{Role: chat.RoleTherapist, Content: "t3"},
		{Role: chat.RoleClient, Content: "c3"},
	}, record.Messages)
	assert.Equal(t, []int{2}, reminders)
	assert.Equal(t, "c2"+ReminderNotice(1), therapist.Heard()[2])
}

func TestExplicitEndDropsUtterance(t *testing.T) {
	for _, token := range []string{"END", "exit", "Dr. Rivera: end", "  EXIT  "} {
		store := transcript.NewMemoryStore()
		therapist := agent.NewScriptedAgent("Dr. Rivera", "Hello.", token)
		client := agent.NewScriptedAgent("Alex", "Hi.")

		record, err := NewController(store).Run(context.Background(), therapist, client, Config{MaxTurns: 10, ReminderTurnNum: 2}, nil)
		require.NoError(t, err, token)

		assert.Equal(t, chat.ReasonExplicitEnd, record.TerminationReason, token)
		assert.Equal(t, []chat.Turn{
			{Role: chat.RoleTherapist, Content: "Hello."},
			{Role: chat.RoleClient, Content: "Hi."},
		}, record.Messages, token)
		assert.Equal(t, 1, record.NumTurns)
		assert.Len(t, client.Heard(), 1, "client skipped after end token")

		saved, err := store.Get(context.Background(), record.ID)
		require.NoError(t, err)
		assert.Len(t, saved.Messages, 2)
	}
}

func TestRunAcceptsHugeTurnBudget(t *testing.T) {
	store := transcript.NewMemoryStore()
	therapist := agent.NewScriptedAgent("Dr. Rivera", "Hi.", "end")
	client := agent.NewScriptedAgent("Alex", "Hello.")

	var record chat.Transcript
	var err error
	require.NotPanics(t, func() {
		record, err = NewController(store).Run(context.Background(), therapist, client, Config{MaxTurns: math.MaxInt}, nil)
	})
	require.NoError(t, err)
	assert.Equal(t, chat.ReasonExplicitEnd, record.TerminationReason)
	assert.Equal(t, 1, record.NumTurns)
}

func TestAgentsHearUnprefixedUtterances(t *testing.T) {
	therapist := agent.NewScriptedAgent("Dr. Rivera", "t1", "t2")
	client := agent.NewScriptedAgent("Alex", "c1", "c2")

	_, err := NewController(nil).Run(context.Background(), therapist, client, Config{MaxTurns: 2}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t2"}, client.Heard())
	assert.Equal(t, "c1", therapist.Heard()[1])
}

func TestEndTokenMustBeWholeUtterance(t *testing.T) {
	assert.False(t, IsEndToken("Let's end here for today.", "Dr. Rivera"))
	assert.False(t, IsEndToken("ending", "Dr. Rivera"))
	assert.True(t, IsEndToken("dr. rivera: EXIT", "Dr. Rivera"))
}

func TestAgentErrorAbortsWithoutSaving(t *testing.T) {
	boom := errors.New("generation failed")
	store := transcript.NewMemoryStore()
	therapist := agent.NewScriptedAgent("Dr. Rivera", "Hello.")

	_, err := NewController(store).Run(context.Background(), therapist, &failingAgent{name: "Alex", err: boom}, Config{MaxTurns: 3}, nil)
	require.ErrorIs(t, err, boom)

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestCallTimeoutAborts(t *testing.T) {
	store := transcript.NewMemoryStore()
	ctrl := NewController(store, WithCallTimeout(20*time.Millisecond))

	_, err := ctrl.Run(context.Background(), blockingAgent{}, agent.NewScriptedAgent("Alex", "Hi."), Config{MaxTurns: 2}, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	saved, _ := store.List(context.Background())
	assert.Empty(t, saved)
}

func TestInvalidConfig(t *testing.T) {
	ctrl := NewController(nil)
	a := agent.NewScriptedAgent("A", "x")
	b := agent.NewScriptedAgent("B", "y")

	_, err := ctrl.Run(context.Background(), a, b, Config{MaxTurns: 0}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = ctrl.Run(context.Background(), a, b, Config{MaxTurns: 3, ReminderTurnNum: -1}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunIntroducesAgentsAndEmitsEvents(t *testing.T) {
	therapist := agent.NewScriptedAgent("Dr. Rivera", "Hi.")
	client := agent.NewScriptedAgent("Alex", "Hello.")
	reg := prometheus.NewRegistry()
	ctrl := NewController(nil, WithMetrics(metrics.NewSimulationMetrics(reg)))

	var events []Event
	record, err := ctrl.Run(context.Background(), therapist, client, Config{SessionID: "s-1", MaxTurns: 2, Profile: "alex"}, func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, "Alex", therapist.Counterpart())
	assert.Equal(t, "Dr. Rivera", client.Counterpart())
	assert.Equal(t, "s-1", record.ID)
	assert.Equal(t, "alex", record.Profile)

	require.Len(t, events, 5)
	assert.Equal(t, EventTurn, events[0].Type)
	assert.Equal(t, chat.RoleTherapist, events[0].Turn.Role)
	last := events[len(events)-1]
	assert.Equal(t, EventEnd, last.Type)
	assert.Equal(t, chat.ReasonTurnLimit, last.Reason)
	require.NotNil(t, last.Transcript)
	assert.Len(t, last.Transcript.Messages, 4)
}

func TestCancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewController(nil).Run(ctx, agent.NewScriptedAgent("A", "x"), agent.NewScriptedAgent("B", "y"), Config{MaxTurns: 3}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

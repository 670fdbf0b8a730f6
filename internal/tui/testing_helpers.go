package tui

import (
	"context"
	"testing"
	"time"

	"github.com/studiowebux/tabkeys/internal/agent"
	"github.com/studiowebux/tabkeys/internal/messaging"
)

// testSender is the extension id test agents accept signals from
const testSender = "tabkeys@test"

// CreateTestModel creates a started Model around an offline agent
func CreateTestModel(t *testing.T) (*Model, *messaging.Loopback) {
	t.Helper()

	lb := messaging.NewLoopback(testSender)
	a, err := agent.New(agent.Options{
		ExtensionID: testSender,
		Channel:     lb,
		Signals:     lb,
	})
	if err != nil {
		t.Fatalf("Failed to create test agent: %v", err)
	}
	t.Cleanup(a.Stop)

	m := New(context.Background(), a, Options{
		ReleaseDelay: time.Millisecond,
		Connection:   "offline",
		StoreLabel:   "defaults",
	})
	m.Update(m.Init()())

	return &m, lb
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

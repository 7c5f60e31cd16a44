package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/core/ports"
)

type recordingNotifier struct {
	mu      sync.Mutex
	pushes  map[string][]string
	failFor string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{pushes: make(map[string][]string)}
}

func (n *recordingNotifier) Push(ctx context.Context, accountID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if accountID == n.failFor {
		return errors.New("push rejected")
	}
	n.pushes[accountID] = append(n.pushes[accountID], text)
	return nil
}

func (n *recordingNotifier) Reply(ctx context.Context, replyToken, text string) error {
	return nil
}

func TestFanout_DeliversAll(t *testing.T) {
	notifier := newRecordingNotifier()
	fanout := NewFanout(4, notifier, zerolog.Nop())

	reminders := make([]ports.Reminder, 0, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("U%03d", i)
		reminders = append(reminders, ports.Reminder{Name: id, AccountID: id, Text: "reminder"})
	}

	if got := fanout.Deliver(context.Background(), reminders); got != 20 {
		t.Fatalf("expected 20 delivered, got %d", got)
	}
	if len(notifier.pushes) != 20 {
		t.Fatalf("expected 20 recipients, got %d", len(notifier.pushes))
	}
}

func TestFanout_CountsOnlySuccesses(t *testing.T) {
	notifier := newRecordingNotifier()
	notifier.failFor = "U002"
	fanout := NewFanout(2, notifier, zerolog.Nop())

	reminders := []ports.Reminder{
		{Name: "Alice", AccountID: "U001", Text: "reminder"},
		{Name: "Bob", AccountID: "U002", Text: "reminder"},
		{Name: "Cara", AccountID: "U003", Text: "reminder"},
	}

	if got := fanout.Deliver(context.Background(), reminders); got != 2 {
		t.Fatalf("expected 2 delivered, got %d", got)
	}
	if _, ok := notifier.pushes["U002"]; ok {
		t.Fatal("failed recipient should not be recorded")
	}
}

func TestFanout_PerRecipientOrdering(t *testing.T) {
	notifier := newRecordingNotifier()
	fanout := NewFanout(3, notifier, zerolog.Nop())

	reminders := []ports.Reminder{
		{Name: "Alice", AccountID: "U001", Text: "first"},
		{Name: "Alice", AccountID: "U001", Text: "second"},
		{Name: "Alice", AccountID: "U001", Text: "third"},
	}

	if got := fanout.Deliver(context.Background(), reminders); got != 3 {
		t.Fatalf("expected 3 delivered, got %d", got)
	}
	want := []string{"first", "second", "third"}
	got := notifier.pushes["U001"]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering broken: got %v", got)
		}
	}
}

func TestFanout_EmptyBatch(t *testing.T) {
	fanout := NewFanout(0, newRecordingNotifier(), zerolog.Nop())
	if got := fanout.Deliver(context.Background(), nil); got != 0 {
		t.Fatalf("expected 0 delivered, got %d", got)
	}
}

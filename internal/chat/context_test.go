package chat

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestConversationContext_TrimsToMaxHistory(t *testing.T) {
	c := NewConversationContext(10)

	// 11 user/assistant pairs: 22 turns, only the last 10 survive.
	for i := 1; i <= 11; i++ {
		c.AddTurn("user", fmt.Sprintf("message %d", i), nil)
		c.AddTurn("assistant", fmt.Sprintf("reply %d", i), nil)
	}

	if c.Len() != 10 {
		t.Fatalf("expected 10 turns, got %d", c.Len())
	}

	recent := c.Recent(10)
	if recent[len(recent)-1].Text != "reply 11" {
		t.Errorf("expected most recent turn last, got %q", recent[len(recent)-1].Text)
	}
	if recent[0].Text != "reply 7" {
		t.Errorf("expected oldest surviving turn 'reply 7', got %q", recent[0].Text)
	}
}

func TestConversationContext_ExactlyNAfterNPlusOne(t *testing.T) {
	c := NewConversationContext(3)
	for i := 1; i <= 4; i++ {
		c.AddTurn("user", fmt.Sprintf("m%d", i), nil)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 turns, got %d", c.Len())
	}
	recent := c.Recent(3)
	for i, want := range []string{"m2", "m3", "m4"} {
		if recent[i].Text != want {
			t.Errorf("turn %d: got %q, want %q", i, recent[i].Text, want)
		}
	}
}

func TestConversationContext_LastMentionedRequiresTitle(t *testing.T) {
	c := NewConversationContext(10)

	c.AddTurn("assistant", "done", &TaskRef{ID: 5})
	if c.LastMentioned() != nil {
		t.Error("ref without title must not update last mentioned")
	}

	c.AddTurn("assistant", "created", &TaskRef{ID: 5, Title: "Buy milk", Status: "pending"})
	last := c.LastMentioned()
	if last == nil || last.ID != 5 || last.Title != "Buy milk" {
		t.Errorf("unexpected last mentioned: %+v", last)
	}
	if c.LastMentionedID() != 5 {
		t.Errorf("expected id 5, got %d", c.LastMentionedID())
	}
}

func TestConversationContext_LastMentionedSurvivesTrim(t *testing.T) {
	c := NewConversationContext(4)

	c.AddTurn("assistant", "created", &TaskRef{ID: 1, Title: "Buy milk", Status: "pending"})
	for i := 0; i < 10; i++ {
		c.AddTurn("user", "filler", nil)
	}

	if c.Len() != 4 {
		t.Fatalf("expected trimmed log, got %d turns", c.Len())
	}
	last := c.LastMentioned()
	if last == nil || last.Title != "Buy milk" {
		t.Errorf("last mentioned lost after trim: %+v", last)
	}
}

func TestConversationContext_Snapshot(t *testing.T) {
	c := NewConversationContext(10)
	c.AddTurn("user", "hello", nil)
	c.AddTurn("assistant", "hi", nil)

	msgs := c.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != schema.User || msgs[0].Content != "hello" {
		t.Errorf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != schema.Assistant || msgs[1].Content != "hi" {
		t.Errorf("unexpected second message: %+v", msgs[1])
	}
}

func TestConversationContext_Clear(t *testing.T) {
	c := NewConversationContext(10)
	c.AddTurn("assistant", "created", &TaskRef{ID: 1, Title: "Buy milk"})
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty log, got %d turns", c.Len())
	}
	if c.LastMentioned() != nil {
		t.Error("expected last mentioned cleared")
	}
	if c.LastMentionedID() != 0 {
		t.Error("expected zero id after clear")
	}
}

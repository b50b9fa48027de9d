// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared fixtures for tests: a canned match
// schedule and a scripted chat transport.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/predictbot/schedule"
	"github.com/danielhkuo/predictbot/telegram"
)

// ScheduleCSV is a small but representative schedule: two decided
// matches and two playoff placeholders.
const ScheduleCSV = `MatchNo,Date,Day,Teams,MatchTime,Venue,PollStartTime,PollEndTime
5,26 Mar 2025,Wednesday,Mumbai Indians vs Chennai Super Kings,7:30 PM,Wankhede Stadium,7:00 PM,7:25 PM
6,27 Mar 2025,Thursday,Delhi Capitals vs Royal Challengers Bengaluru,7:30 PM,Arun Jaitley Stadium,7:00 PM,7:25 PM
71,20 May 2025,Tuesday,Qualifier 1,7:30 PM,Eden Gardens,7:00 PM,7:25 PM
74,25 May 2025,Sunday,Final,7:30 PM,Eden Gardens,7:00 PM,7:25 PM
`

// LoadRegistry writes csv to a temp file and loads it as a registry
func LoadRegistry(t *testing.T, csv string) *schedule.Registry {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schedule.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("Failed to write schedule fixture: %v", err)
	}

	reg, err := schedule.Load(path)
	if err != nil {
		t.Fatalf("Failed to load schedule fixture: %v", err)
	}
	return reg
}

// SentMessage records one outbound message
type SentMessage struct {
	ChatID   int64
	Text     string
	Markdown bool
}

// SentPoll records one outbound poll
type SentPoll struct {
	ChatID    int64
	Question  string
	Options   []string
	Anonymous bool
	PollID    string
}

// FakeTransport is a scripted bot.Transport. Sent messages and polls
// are recorded; updates are fed through a channel.
type FakeTransport struct {
	mu       sync.Mutex
	messages []SentMessage
	polls    []SentPoll
	pollSeq  int

	// SendPollErr, when set, fails every SendPoll call
	SendPollErr error

	// Updates feeds GetUpdates; closing it makes GetUpdates block
	// until the context ends
	Updates chan []telegram.Update

	Commands []telegram.BotCommand
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{Updates: make(chan []telegram.Update, 16)}
}

func (f *FakeTransport) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, SentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *FakeTransport) SendMarkdown(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, SentMessage{ChatID: chatID, Text: text, Markdown: true})
	return nil
}

func (f *FakeTransport) SendPoll(_ context.Context, chatID int64, question string, options []string, anonymous bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendPollErr != nil {
		return "", f.SendPollErr
	}
	f.pollSeq++
	id := "poll-" + strconv.Itoa(f.pollSeq)
	f.polls = append(f.polls, SentPoll{
		ChatID:    chatID,
		Question:  question,
		Options:   options,
		Anonymous: anonymous,
		PollID:    id,
	})
	return id, nil
}

func (f *FakeTransport) SetMyCommands(_ context.Context, commands []telegram.BotCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = commands
	return nil
}

func (f *FakeTransport) GetUpdates(ctx context.Context, _ int64, _ time.Duration) ([]telegram.Update, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case batch, ok := <-f.Updates:
		if !ok {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return batch, nil
	}
}

// Messages returns a snapshot of everything sent so far
func (f *FakeTransport) Messages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.messages...)
}

// Polls returns a snapshot of every poll sent so far
func (f *FakeTransport) Polls() []SentPoll {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentPoll(nil), f.polls...)
}

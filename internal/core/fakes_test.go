package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatrelay/telegram-ai-bot/internal/session"
)

// eventLog records the order in which gateways were hit.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) record(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, name)
}

func (e *eventLog) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type generateCall struct {
	systemPrompt string
	turns        []session.Turn
	maxTokens    int32
}

type fakeGenerator struct {
	mu     sync.Mutex
	events *eventLog
	calls  []generateCall
	reply  string
	err    error
	// echo replies with the content of the last turn when set
	echo bool
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt string, turns []session.Turn, maxTokens int32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events != nil {
		f.events.record("generate")
	}
	copied := append([]session.Turn(nil), turns...)
	f.calls = append(f.calls, generateCall{systemPrompt: systemPrompt, turns: copied, maxTokens: maxTokens})
	if f.err != nil {
		return "", f.err
	}
	if f.echo {
		return "echo: " + turns[len(turns)-1].Content, nil
	}
	return f.reply, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type mailCall struct {
	subject string
	body    string
	to      string
}

type fakeMailer struct {
	mu     sync.Mutex
	events *eventLog
	calls  []mailCall
	err    error
}

func (f *fakeMailer) Send(ctx context.Context, subject, body, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events != nil {
		f.events.record("send")
	}
	f.calls = append(f.calls, mailCall{subject: subject, body: body, to: to})
	return f.err
}

func (f *fakeMailer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type logEntry struct {
	action  string
	details string
}

type fakeConfigLog struct {
	mu      sync.Mutex
	config  map[string]string
	logs    []logEntry
	getErr  error
	logErr  error
	lookups int
}

func (f *fakeConfigLog) GetConfig(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.getErr != nil {
		return "", false, f.getErr
	}
	value, found := f.config[key]
	return value, found, nil
}

func (f *fakeConfigLog) AppendLog(ctx context.Context, action, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, logEntry{action: action, details: details})
	return nil
}

func (f *fakeConfigLog) records() []logEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logEntry(nil), f.logs...)
}

type testFixture struct {
	svc       *Service
	sessions  *session.Store
	generator *fakeGenerator
	mailer    *fakeMailer
	configLog *fakeConfigLog
	events    *eventLog
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	sessions, err := session.NewStore(64, 100)
	require.NoError(t, err)

	events := &eventLog{}
	generator := &fakeGenerator{events: events, reply: "generated reply"}
	mailer := &fakeMailer{events: events}
	configLog := &fakeConfigLog{config: map[string]string{}}

	return &testFixture{
		svc:       NewService(sessions, generator, mailer, configLog),
		sessions:  sessions,
		generator: generator,
		mailer:    mailer,
		configLog: configLog,
		events:    events,
	}
}

package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"tutor-connect-go/internal/assistant"
	"tutor-connect-go/internal/config"
	"tutor-connect-go/internal/model"
)

// fakeSearch 是 SearchService 的内存实现，记录调用并返回固定命中数。
type fakeSearch struct {
	mu            sync.Mutex
	tutorCount    int
	teammateCount int
	tutorCalls    []string // 记录 subject 参数
	teammateCalls []string
}

func (f *fakeSearch) SearchTutors(ctx context.Context, subject, department string, topK int) ([]model.EsProfile, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tutorCalls = append(f.tutorCalls, subject)
	return nil, f.tutorCount, nil
}

func (f *fakeSearch) SearchTeammates(ctx context.Context, skill, department string, topK int) ([]model.EsProfile, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teammateCalls = append(f.teammateCalls, skill)
	return nil, f.teammateCount, nil
}

func (f *fakeSearch) SearchProfiles(ctx context.Context, query string, topK int) ([]model.EsProfile, int, error) {
	return nil, 0, nil
}

func testAssistantConfig() config.AssistantConfig {
	return config.AssistantConfig{MinQueryLength: 3, NavigationDelayMs: 10, SearchTopK: 20}
}

func TestOpenSessionGreetsOnce(t *testing.T) {
	svc := NewAssistantService(&fakeSearch{}, testAssistantConfig())

	id, greeting := svc.OpenSession()
	if id == "" {
		t.Fatal("session id must not be empty")
	}
	if greeting != assistant.WelcomeMessage {
		t.Fatalf("got greeting %q, want the welcome message", greeting)
	}

	transcript, ok := svc.Transcript(id)
	if !ok || len(transcript) != 1 || !transcript[0].IsBot {
		t.Fatalf("transcript after open: %+v", transcript)
	}
}

func TestHandleMessageRunsSearchForFindIntents(t *testing.T) {
	search := &fakeSearch{tutorCount: 7}
	svc := NewAssistantService(search, testAssistantConfig())
	id, _ := svc.OpenSession()

	reply, ok := svc.HandleMessage(context.Background(), id, "find tutor for Java")
	if !ok {
		t.Fatal("HandleMessage returned not ok")
	}
	if len(search.tutorCalls) != 1 || search.tutorCalls[0] != "Java" {
		t.Fatalf("tutor search calls: %v", search.tutorCalls)
	}
	if !strings.Contains(reply.Text, "7") || !strings.Contains(reply.Text, "Java") {
		t.Fatalf("reply should carry count and topic: %q", reply.Text)
	}
	if reply.Navigation == nil || reply.Navigation.Route != assistant.RouteTutors {
		t.Fatalf("unexpected navigation: %+v", reply.Navigation)
	}
}

func TestHandleMessageGreetingSkipsSearch(t *testing.T) {
	search := &fakeSearch{}
	svc := NewAssistantService(search, testAssistantConfig())
	id, _ := svc.OpenSession()

	reply, ok := svc.HandleMessage(context.Background(), id, "hello!")
	if !ok {
		t.Fatal("HandleMessage returned not ok")
	}
	if len(search.tutorCalls)+len(search.teammateCalls) != 0 {
		t.Fatal("greeting must not trigger a search")
	}
	if reply.Navigation != nil {
		t.Fatalf("greeting reply must not navigate: %+v", reply.Navigation)
	}
}

func TestHandleMessageUnknownSession(t *testing.T) {
	svc := NewAssistantService(&fakeSearch{}, testAssistantConfig())
	if _, ok := svc.HandleMessage(context.Background(), "no-such-session", "hi"); ok {
		t.Fatal("unknown session must be rejected")
	}
}

func TestCloseSessionDestroysState(t *testing.T) {
	svc := NewAssistantService(&fakeSearch{}, testAssistantConfig())
	id, _ := svc.OpenSession()

	svc.CloseSession(id)
	if _, ok := svc.Transcript(id); ok {
		t.Fatal("session state must be destroyed on close")
	}
	if _, ok := svc.HandleMessage(context.Background(), id, "hi"); ok {
		t.Fatal("closed session must not accept messages")
	}
}

func TestDeliverSendsReplyBeforeNavigation(t *testing.T) {
	search := &fakeSearch{teammateCount: 2}
	svc := NewAssistantService(search, testAssistantConfig())
	id, _ := svc.OpenSession()

	reply, ok := svc.HandleMessage(context.Background(), id, "looking for a teammate for a hackathon")
	if !ok || reply.Navigation == nil {
		t.Fatalf("expected a navigating reply, got %+v", reply)
	}

	var mu sync.Mutex
	var order []string
	navDone := make(chan struct{})

	svc.Deliver(reply,
		func(text string) {
			mu.Lock()
			order = append(order, "reply")
			mu.Unlock()
		},
		func(nav assistant.Navigation) {
			mu.Lock()
			order = append(order, "nav")
			mu.Unlock()
			close(navDone)
		})

	// 文本必须在 Deliver 返回前已发出
	mu.Lock()
	if len(order) != 1 || order[0] != "reply" {
		mu.Unlock()
		t.Fatalf("reply must be sent synchronously before navigation, order=%v", order)
	}
	mu.Unlock()

	select {
	case <-navDone:
	case <-time.After(time.Second):
		t.Fatal("navigation never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[1] != "nav" {
		t.Fatalf("order = %v, want [reply nav]", order)
	}
}

func TestDeliverWithoutNavigation(t *testing.T) {
	svc := NewAssistantService(&fakeSearch{}, testAssistantConfig())

	sent := false
	svc.Deliver(assistant.Reply{Text: "ok"},
		func(string) { sent = true },
		func(assistant.Navigation) { t.Fatal("no navigation expected") })
	if !sent {
		t.Fatal("reply text was not sent")
	}

	// 无导航时不会有延迟回调，稍等以捕获误触发
	time.Sleep(30 * time.Millisecond)
}

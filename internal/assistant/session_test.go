package assistant

import (
	"fmt"
	"sync"
	"testing"
)

func passthrough(res Result, ctx Context) Reply {
	return Respond(res, ctx, nil)
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("s1")
	if s.State() != StateClosed {
		t.Fatal("新会话应处于 closed 状态")
	}

	greeting, sent := s.Open()
	if !sent || greeting != WelcomeMessage {
		t.Fatalf("首次打开应下发欢迎语: sent=%v", sent)
	}
	if s.State() != StateAwaitingInput {
		t.Fatal("打开后应立即进入 awaiting_input")
	}

	reply, ok := s.Submit("hey", testMinQueryLength, passthrough)
	if !ok || reply.Text == "" {
		t.Fatal("awaiting_input 状态下提交应产生回复")
	}
	if s.State() != StateAwaitingInput {
		t.Fatal("回复发出后应回到 awaiting_input")
	}
}

func TestSessionGreetingOnlyOnce(t *testing.T) {
	s := NewSession("s2")
	if _, sent := s.Open(); !sent {
		t.Fatal("首次打开应下发欢迎语")
	}
	s.Close()
	if _, sent := s.Open(); sent {
		t.Fatal("同一会话内重新打开不应再次下发欢迎语")
	}
}

func TestSessionSubmitRequiresOpen(t *testing.T) {
	s := NewSession("s3")
	if _, ok := s.Submit("hello", testMinQueryLength, passthrough); ok {
		t.Fatal("closed 状态下不应接受提交")
	}
}

func TestSessionTranscriptAppendOnly(t *testing.T) {
	s := NewSession("s4")
	s.Open()
	s.Submit("I need help with Java", testMinQueryLength, passthrough)
	s.Submit("thanks", testMinQueryLength, passthrough)

	tr := s.Transcript()
	// 欢迎语 + (用户, 机器人) * 2
	if len(tr) != 5 {
		t.Fatalf("会话记录长度 = %d, want 5", len(tr))
	}
	if !tr[0].IsBot || tr[1].IsBot || !tr[2].IsBot {
		t.Fatalf("会话记录顺序错误: %+v", tr)
	}
}

func TestSessionContextTracksLastSlots(t *testing.T) {
	s := NewSession("s5")
	s.Open()
	s.Submit("find tutor for Python in cse", testMinQueryLength, passthrough)

	ctx := s.Context()
	if ctx.LastSubject != "Python" || ctx.LastDepartment != "CSE" {
		t.Fatalf("上下文未更新: %+v", ctx)
	}

	// 未抽取到槽位的消息不应清空既有上下文
	s.Submit("anything else going on", testMinQueryLength, passthrough)
	ctx = s.Context()
	if ctx.LastSubject != "Python" {
		t.Fatalf("上下文被意外清空: %+v", ctx)
	}
}

func TestSessionSerializesSubmissions(t *testing.T) {
	s := NewSession("s6")
	s.Open()

	var inFlight, maxInFlight int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Submit(fmt.Sprintf("message %d about java", i), testMinQueryLength, func(res Result, ctx Context) Reply {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				reply := Respond(res, ctx, nil)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return reply
			})
		}(i)
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Fatalf("同一会话的提交未被串行化: maxInFlight=%d", maxInFlight)
	}
	// 16 条消息全部按序落入会话记录：欢迎语 + 16*2
	if got := len(s.Transcript()); got != 33 {
		t.Fatalf("会话记录长度 = %d, want 33", got)
	}
}

package assistant

import "sync"

// State 是会话状态机的状态。
type State int

const (
	StateClosed State = iota
	StateGreeting
	StateAwaitingInput
	StateResponding
)

// Entry 是会话记录中的一条消息。
type Entry struct {
	Text  string `json:"text"`
	IsBot bool   `json:"isBot"`
}

// Session 是一次对话交互的可变状态，由单个客户端交互独占：
// 消息记录只追加，上下文记录最近一次抽取出的科目与院系。
// 会话随对话界面打开而创建、关闭而销毁，不跨会话持久化。
//
// 状态机：closed → greeting（打开时，欢迎语只下发一次）→ awaiting_input；
// 提交消息时 awaiting_input → responding，回复（及可选导航）发出后回到
// awaiting_input。除 closed 外没有终止状态，会话结束总是由外部触发。
type Session struct {
	mu         sync.Mutex
	id         string
	state      State
	transcript []Entry
	ctx        Context
	greeted    bool
}

// NewSession 创建一个处于 closed 状态的会话。
func NewSession(id string) *Session {
	return &Session{id: id, state: StateClosed}
}

// ID 返回会话标识。
func (s *Session) ID() string {
	return s.id
}

// Open 打开会话。首次打开返回欢迎语并记入会话记录；同一会话内
// 重复打开不会再生成欢迎语。随后立即进入 awaiting_input。
func (s *Session) Open() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateClosed {
		return "", false
	}
	s.state = StateGreeting
	greetingSent := false
	if !s.greeted {
		s.greeted = true
		greetingSent = true
		s.transcript = append(s.transcript, Entry{Text: WelcomeMessage, IsBot: true})
	}
	s.state = StateAwaitingInput
	if greetingSent {
		return WelcomeMessage, true
	}
	return "", false
}

// Submit 提交一条用户消息并驱动 分类 → 执行 → 回复 的流程。
// exec 由调用方提供，拿到识别结果后执行可选的下游搜索并生成回复。
// 互斥锁保证同一会话的提交严格串行：同一时刻最多一条消息在处理，
// awaiting_input → responding → awaiting_input 的循环因此保持良定义。
func (s *Session) Submit(text string, minQueryLength int, exec func(Result, Context) Reply) (Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingInput {
		return Reply{}, false
	}
	s.state = StateResponding
	s.transcript = append(s.transcript, Entry{Text: text, IsBot: false})

	res := Classify(text, s.ctx, minQueryLength)
	reply := exec(res, s.ctx)

	// 更新上下文：记录最近一次成功抽取的槽位
	if res.Subject != "" {
		s.ctx.LastSubject = res.Subject
	}
	if res.Department != "" {
		s.ctx.LastDepartment = res.Department
	}

	s.transcript = append(s.transcript, Entry{Text: reply.Text, IsBot: true})
	s.state = StateAwaitingInput
	return reply, true
}

// Close 结束会话。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// State 返回当前状态。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Context 返回当前会话上下文的副本。
func (s *Session) Context() Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Transcript 返回会话记录的副本。
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

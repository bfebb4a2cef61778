package assistant

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Intent 是一条用户消息被识别出的目的。
type Intent string

const (
	IntentUnknown      Intent = "unknown"
	IntentGreeting     Intent = "greeting"
	IntentThanks       Intent = "thanks"
	IntentHelpRequest  Intent = "help_request"
	IntentBecomeTutor  Intent = "become_tutor"
	IntentFindTeammate Intent = "find_teammate"
	IntentFindTutor    Intent = "find_tutor"
	IntentGenericQuery Intent = "generic_query"
)

// Result 是单条消息的识别结果，每条消息新建，不做持久化。
type Result struct {
	Intent     Intent `json:"intent"`
	Subject    string `json:"subject,omitempty"`
	Department string `json:"department,omitempty"`
	RawQuery   string `json:"rawQuery,omitempty"`
}

// Context 是会话内用于个性化后续回复的小型可变上下文。
type Context struct {
	LastSubject    string
	LastDepartment string
}

// 问候与道谢的固定模式，优先级最高且从不携带槽位。
var (
	greetingRe = regexp.MustCompile(`^(hi|hello|hey|hola|yo)\b`)
	thanksRe   = regexp.MustCompile(`^(thanks|thank you|thx|ty)\b`)
)

// 各意图的关键词集合，按声明顺序即优先级检查。
var (
	helpRequestKeywords = []string{"need help", "looking for help", "struggling with", "post a request", "student request"}
	becomeTutorKeywords = []string{"want to teach", "become a tutor", "help others", "i can teach"}
	teammateKeywords    = []string{"teammate", "project partner", "hackathon", "collaborat"}
	findTutorKeywords   = []string{"find tutor", "get tutor", "tutor for"}
)

// Classify 把一条自由文本消息映射为意图与抽取出的槽位。
//
// 同一输入加同一词表永远产生同一输出：没有随机性，也没有外部调用。
// prior 是会话上下文，按契约传入；当前的规则集不依赖它，
// 后续槽位继承策略如有需要可以在此接入。
func Classify(text string, prior Context, minQueryLength int) Result {
	_ = prior

	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Result{Intent: IntentUnknown}
	}

	// 问候/道谢短路，最高优先级，不携带槽位
	if greetingRe.MatchString(lower) {
		return Result{Intent: IntentGreeting}
	}
	if thanksRe.MatchString(lower) {
		return Result{Intent: IntentThanks}
	}

	department, _ := DepartmentTable.Resolve(lower)
	subject, subjectFound := SubjectTable.Resolve(lower)

	if containsAny(lower, helpRequestKeywords) {
		return Result{Intent: IntentHelpRequest, Subject: subject, Department: department}
	}
	if containsAny(lower, becomeTutorKeywords) {
		return Result{Intent: IntentBecomeTutor, Subject: subject, Department: department}
	}
	if containsAny(lower, teammateKeywords) {
		return Result{Intent: IntentFindTeammate, Subject: subject, Department: department}
	}
	// 显式找导师关键词，或解析到科目且没有其它意图关键词
	if containsAny(lower, findTutorKeywords) || subjectFound {
		return Result{Intent: IntentFindTutor, Subject: subject, Department: department}
	}

	// 无匹配时的兜底：足够长的输入作为非结构化查询
	if utf8.RuneCountInString(lower) >= minQueryLength {
		return Result{Intent: IntentGenericQuery, Department: department, RawQuery: strings.TrimSpace(text)}
	}
	return Result{Intent: IntentUnknown}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

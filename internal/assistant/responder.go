package assistant

import "fmt"

// 导航目标路由。
const (
	RouteTutors    = "/tutors"
	RouteTeammates = "/teammates"
)

// WelcomeMessage 是会话打开时下发一次的固定欢迎语。
const WelcomeMessage = "Hey! I'm your campus assistant! 🌟\n\n" +
	"I can help you with:\n\n" +
	"📚 Find tutors for any subject\n" +
	"🎓 Post a request for help\n" +
	"🚀 Find teammates for projects\n" +
	"💡 Become a tutor yourself\n\n" +
	"Just tell me what you need!"

// Navigation 是回复附带的导航副作用：目标路由与查询参数。
// 它只描述去哪里，何时跳转由下发方决定（回复先于导航）。
type Navigation struct {
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
}

// Reply 是回复生成器的输出。
type Reply struct {
	Text       string      `json:"text"`
	Navigation *Navigation `json:"navigation,omitempty"`
}

// Respond 根据识别结果、会话上下文与可选的搜索结果数生成回复。
// resultCount 为 nil 表示下游搜索尚未执行；非 nil 时回复按命中数分档。
// 与 Classify 一样，本函数是确定性的纯函数。
func Respond(res Result, ctx Context, resultCount *int) Reply {
	switch res.Intent {
	case IntentGreeting:
		return Reply{Text: "Hey! 😊 What subject do you need help with today?"}

	case IntentThanks:
		return Reply{Text: "You're welcome! Feel free to ask me anything else. 😊"}

	case IntentFindTutor:
		nav := &Navigation{Route: RouteTutors, Params: slotParams("find", res)}
		if resultCount != nil {
			return Reply{Text: countText(*resultCount, "tutor", "tutors", topicLabel(res)), Navigation: nav}
		}
		return Reply{Text: findTutorText(res), Navigation: nav}

	case IntentFindTeammate:
		params := map[string]string{}
		if res.Subject != "" {
			params["skill"] = res.Subject
		}
		if res.Department != "" {
			params["department"] = res.Department
		}
		nav := &Navigation{Route: RouteTeammates, Params: params}
		if resultCount != nil {
			return Reply{Text: countText(*resultCount, "teammate", "teammates", topicLabel(res)), Navigation: nav}
		}
		return Reply{Text: findTeammateText(res), Navigation: nav}

	case IntentHelpRequest:
		nav := &Navigation{Route: RouteTutors, Params: slotParams("student", res)}
		if res.Subject != "" {
			return Reply{
				Text:       fmt.Sprintf("I totally understand — %s can be challenging! 📚 Let's post a request so tutors can reach out to you. Taking you to the request form now!", res.Subject),
				Navigation: nav,
			}
		}
		return Reply{
			Text:       "Let's get you some help! 📚 Post a request describing what you're stuck on, and tutors will reach out. Taking you to the request form now!",
			Navigation: nav,
		}

	case IntentBecomeTutor:
		return Reply{
			Text:       "That's awesome! 🎓 Sharing what you know is the best way to master it. Taking you to tutor registration now!",
			Navigation: &Navigation{Route: RouteTutors, Params: map[string]string{"mode": "tutor"}},
		}

	case IntentGenericQuery:
		if ctx.LastSubject != "" {
			return Reply{Text: fmt.Sprintf("Got it! 🔍 Are you still asking about %s? Tell me the subject or department you have in mind and I'll narrow it down!", ctx.LastSubject)}
		}
		return Reply{Text: "Got it! 🔍 Could you tell me a bit more — which subject or department do you have in mind?"}

	default: // IntentUnknown
		return Reply{Text: "I didn't quite catch that. 🤔 You can ask me to find a tutor, post a help request, or look for teammates!"}
	}
}

// slotParams 把槽位转换为 /tutors 路由的查询参数。
func slotParams(mode string, res Result) map[string]string {
	params := map[string]string{"mode": mode}
	if res.Subject != "" {
		params["subject"] = res.Subject
	}
	if res.Department != "" {
		params["department"] = res.Department
	}
	return params
}

// topicLabel 给回复挑一个可读的主题：科目优先，其次院系。
func topicLabel(res Result) string {
	switch {
	case res.Subject != "" && res.Department != "":
		return res.Department + " · " + res.Subject
	case res.Subject != "":
		return res.Subject
	case res.Department != "":
		return res.Department
	default:
		return "that"
	}
}

// countText 按命中数分档生成回复：零条致歉并给出重试建议（不报数字），
// 恰好一条用单数确认，多条报出数量与主题。
func countText(count int, singular, plural, topic string) string {
	switch {
	case count <= 0:
		return fmt.Sprintf("Sorry, I couldn't find any matches for %s right now. 😔 Try a different subject, or drop the department filter and I'll look again!", topic)
	case count == 1:
		return fmt.Sprintf("Good news — I found exactly one %s for %s! 🎯 Check them out below!", singular, topic)
	default:
		return fmt.Sprintf("Perfect! I found %d %s for %s. 🎯 Check them out below!", count, plural, topic)
	}
}

func findTutorText(res Result) string {
	switch {
	case res.Subject != "" && res.Department != "":
		return fmt.Sprintf("Perfect! Looking for %s tutors who know %s. 🎯 Taking you to the matches now!", res.Department, res.Subject)
	case res.Subject != "":
		return fmt.Sprintf("Great choice! Let's find you a tutor for %s. 📚 Taking you there now!", res.Subject)
	case res.Department != "":
		return fmt.Sprintf("Showing %s tutors for you! 🎓 Taking you there now!", res.Department)
	default:
		return "Let's find you a tutor! 📚 Taking you to the tutor listing now!"
	}
}

func findTeammateText(res Result) string {
	switch {
	case res.Subject != "" && res.Department != "":
		return fmt.Sprintf("Awesome! Looking for %s students who know %s. 🚀 Taking you to the matches now!", res.Department, res.Subject)
	case res.Subject != "":
		return fmt.Sprintf("Awesome project! Let's find teammates who know %s. 🚀 Taking you there now!", res.Subject)
	case res.Department != "":
		return fmt.Sprintf("Showing %s students for you! 🚀 Taking you there now!", res.Department)
	default:
		return "Let's find you some teammates! 🚀 Taking you to the listing now!"
	}
}

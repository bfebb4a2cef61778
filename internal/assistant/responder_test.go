package assistant

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestRespondGreetingFixed(t *testing.T) {
	// 问候/道谢回复固定，忽略槽位与上下文，无导航
	res := Result{Intent: IntentGreeting, Subject: "Python", Department: "CSE"}
	a := Respond(res, Context{}, nil)
	b := Respond(Result{Intent: IntentGreeting}, Context{LastSubject: "Java"}, nil)
	if a.Text != b.Text {
		t.Fatalf("问候回复不固定: %q vs %q", a.Text, b.Text)
	}
	if a.Navigation != nil {
		t.Fatal("问候回复不应携带导航")
	}
}

func TestRespondFindTutorNavigation(t *testing.T) {
	res := Result{Intent: IntentFindTutor, Subject: "Python", Department: "CSE"}
	reply := Respond(res, Context{}, nil)

	if !strings.Contains(reply.Text, "Python") {
		t.Errorf("回复未提及科目: %q", reply.Text)
	}
	nav := reply.Navigation
	if nav == nil {
		t.Fatal("find_tutor 应产生导航")
	}
	if nav.Route != RouteTutors {
		t.Errorf("Route = %q, want %q", nav.Route, RouteTutors)
	}
	if nav.Params["mode"] != "find" || nav.Params["subject"] != "Python" || nav.Params["department"] != "CSE" {
		t.Errorf("导航参数不正确: %v", nav.Params)
	}
}

func TestRespondHelpRequestNavigation(t *testing.T) {
	res := Result{Intent: IntentHelpRequest, Subject: "Data Structures"}
	reply := Respond(res, Context{}, nil)

	if !strings.Contains(reply.Text, "Data Structures") {
		t.Errorf("回复未包含科目字面量: %q", reply.Text)
	}
	if reply.Navigation == nil || reply.Navigation.Route != RouteTutors || reply.Navigation.Params["mode"] != "student" {
		t.Errorf("help_request 应导航到求助发布: %+v", reply.Navigation)
	}
}

func TestRespondBecomeTutorNavigation(t *testing.T) {
	reply := Respond(Result{Intent: IntentBecomeTutor}, Context{}, nil)
	if reply.Navigation == nil || reply.Navigation.Params["mode"] != "tutor" {
		t.Fatalf("become_tutor 应导航到导师注册: %+v", reply.Navigation)
	}
}

func TestRespondFindTeammateParams(t *testing.T) {
	res := Result{Intent: IntentFindTeammate, Subject: "React", Department: "IT"}
	reply := Respond(res, Context{}, nil)
	nav := reply.Navigation
	if nav == nil || nav.Route != RouteTeammates {
		t.Fatalf("find_teammate 应导航到 %s: %+v", RouteTeammates, nav)
	}
	// 组队场景下科目槽位作为技能参数传递
	if nav.Params["skill"] != "React" || nav.Params["department"] != "IT" {
		t.Errorf("导航参数不正确: %v", nav.Params)
	}
}

func TestRespondResultCountBuckets(t *testing.T) {
	res := Result{Intent: IntentFindTutor, Subject: "Java"}

	zero := Respond(res, Context{}, intPtr(0))
	if !strings.Contains(zero.Text, "Sorry") || !strings.Contains(zero.Text, "Try") {
		t.Errorf("零命中应致歉并建议重试: %q", zero.Text)
	}
	if strings.ContainsAny(zero.Text, "0123456789") {
		t.Errorf("零命中回复不应出现数字: %q", zero.Text)
	}
	if !strings.Contains(zero.Text, "Java") {
		t.Errorf("零命中回复应提及主题: %q", zero.Text)
	}

	one := Respond(res, Context{}, intPtr(1))
	if !strings.Contains(one.Text, "one tutor") {
		t.Errorf("单命中应使用单数形式: %q", one.Text)
	}

	many := Respond(res, Context{}, intPtr(7))
	if !strings.Contains(many.Text, "7 tutors") || !strings.Contains(many.Text, "Java") {
		t.Errorf("多命中应报出数量与主题: %q", many.Text)
	}
}

func TestRespondGenericNoNavigation(t *testing.T) {
	reply := Respond(Result{Intent: IntentGenericQuery, RawQuery: "placements?"}, Context{}, nil)
	if reply.Navigation != nil {
		t.Fatal("generic_query 不应产生导航")
	}
	if !strings.Contains(reply.Text, "?") {
		t.Errorf("generic_query 应产生澄清式提问: %q", reply.Text)
	}

	// 上下文个性化：带有 lastSubject 时在追问中提及
	withCtx := Respond(Result{Intent: IntentGenericQuery}, Context{LastSubject: "Python"}, nil)
	if !strings.Contains(withCtx.Text, "Python") {
		t.Errorf("追问未利用会话上下文: %q", withCtx.Text)
	}
}

func TestRespondUnknown(t *testing.T) {
	reply := Respond(Result{Intent: IntentUnknown}, Context{}, nil)
	if reply.Navigation != nil {
		t.Fatal("unknown 不应产生导航")
	}
	if reply.Text == "" {
		t.Fatal("unknown 也必须产生回复文本")
	}
}

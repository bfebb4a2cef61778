package assistant

import "testing"

const testMinQueryLength = 3

func classify(t *testing.T, text string) Result {
	t.Helper()
	return Classify(text, Context{}, testMinQueryLength)
}

func TestClassifyGreetingAndThanks(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"hey", IntentGreeting},
		{"Hi there!", IntentGreeting},
		{"hello, can you help me", IntentGreeting},
		{"yo", IntentGreeting},
		{"thanks a lot", IntentThanks},
		{"Thank you!", IntentThanks},
		{"ty", IntentThanks},
	}
	for _, c := range cases {
		got := classify(t, c.text)
		if got.Intent != c.want {
			t.Errorf("Classify(%q).Intent = %s, want %s", c.text, got.Intent, c.want)
		}
		// 问候/道谢从不携带槽位
		if got.Subject != "" || got.Department != "" || got.RawQuery != "" {
			t.Errorf("Classify(%q) 携带了槽位: %+v", c.text, got)
		}
	}
}

func TestClassifyGreetingIgnoresHistory(t *testing.T) {
	prior := Context{LastSubject: "Python", LastDepartment: "CSE"}
	got := Classify("hey", prior, testMinQueryLength)
	if got.Intent != IntentGreeting || got.Subject != "" || got.Department != "" {
		t.Fatalf("带上下文的问候识别结果不应变化: %+v", got)
	}
}

func TestClassifySubjectResolution(t *testing.T) {
	cases := []struct {
		text    string
		subject string
	}{
		{"Python", "Python"},
		{"can you recommend a python tutor?", "Python"},
		{"PYTHON PLEASE", "Python"},
		{"I love dsa", "Data Structures"},
		{"help with c++", "C++"},
		{"anyone good at machine learning?", "Machine Learning"},
	}
	for _, c := range cases {
		got := classify(t, c.text)
		if got.Subject != c.subject {
			t.Errorf("Classify(%q).Subject = %q, want %q", c.text, got.Subject, c.subject)
		}
	}
}

func TestClassifyStrugglingWithDataStructures(t *testing.T) {
	got := classify(t, "I'm struggling with Data Structures")
	if got.Intent != IntentHelpRequest {
		t.Fatalf("Intent = %s, want %s", got.Intent, IntentHelpRequest)
	}
	if got.Subject != "Data Structures" {
		t.Fatalf("Subject = %q, want %q", got.Subject, "Data Structures")
	}
}

func TestClassifyIntentPriority(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		// help_request 优先于裸科目触发的 find_tutor
		{"I need help with Java", IntentHelpRequest},
		{"i want to become a tutor", IntentBecomeTutor},
		{"I can teach Python", IntentBecomeTutor},
		{"looking for a teammate for the hackathon", IntentFindTeammate},
		{"anyone want to collaborate on ML?", IntentFindTeammate},
		{"find tutor for thermodynamics", IntentFindTutor},
		// 裸科目且无其它意图关键词 → find_tutor
		{"Java", IntentFindTutor},
	}
	for _, c := range cases {
		got := classify(t, c.text)
		if got.Intent != c.want {
			t.Errorf("Classify(%q).Intent = %s, want %s", c.text, got.Intent, c.want)
		}
	}
}

func TestClassifyDepartmentResolution(t *testing.T) {
	got := classify(t, "find tutor from cse")
	if got.Department != "CSE" {
		t.Fatalf("Department = %q, want CSE", got.Department)
	}
	// 短别名必须整词匹配："with" 不应命中院系 IT
	got = classify(t, "I'm struggling with Data Structures")
	if got.Department != "" {
		t.Fatalf("短别名误命中: Department = %q", got.Department)
	}
}

func TestClassifyGenericAndUnknown(t *testing.T) {
	got := classify(t, "how does the placement season work here")
	if got.Intent != IntentGenericQuery {
		t.Fatalf("Intent = %s, want %s", got.Intent, IntentGenericQuery)
	}
	if got.RawQuery != "how does the placement season work here" {
		t.Fatalf("RawQuery 未携带原文: %q", got.RawQuery)
	}

	for _, text := range []string{"", "   ", "\t\n", "x"} {
		got := classify(t, text)
		if got.Intent != IntentUnknown {
			t.Errorf("Classify(%q).Intent = %s, want %s", text, got.Intent, IntentUnknown)
		}
		if got.Subject != "" || got.Department != "" || got.RawQuery != "" {
			t.Errorf("Classify(%q) 携带了槽位: %+v", text, got)
		}
	}
}

func TestClassifyDeterminism(t *testing.T) {
	const text = "I need help with Data Structures from a CSE senior"
	first := classify(t, text)
	for i := 0; i < 10; i++ {
		if got := classify(t, text); got != first {
			t.Fatalf("同一输入产生了不同输出: %+v vs %+v", got, first)
		}
	}
}

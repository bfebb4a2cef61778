package assistant

import "testing"

func TestResolveSubjects(t *testing.T) {
	cases := []struct {
		input string
		want  string
		found bool
	}{
		{"i love data structures", "Data Structures", true},
		{"dsa is hard", "Data Structures", true},
		{"looking for a py expert", "Python", true},
		{"c++ templates", "C++", true},
		{"react.js hooks", "React", true},
		{"ui/ux portfolio review", "UI/UX Design", true},
		{"nothing relevant here", "", false},
	}
	for _, c := range cases {
		got, found := SubjectTable.Resolve(c.input)
		if got != c.want || found != c.found {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", c.input, got, found, c.want, c.found)
		}
	}
}

func TestResolveDeclarationOrderWins(t *testing.T) {
	// "data structures" 同时包含别名 "data structures" 与整词 "ds" 不冲突，
	// 但当多个词条都可命中时，声明顺序在前者胜出。
	got, _ := SubjectTable.Resolve("data structures and algorithms")
	if got != "Data Structures" {
		t.Fatalf("Resolve = %q, want Data Structures (声明顺序优先)", got)
	}
}

func TestResolveShortAliasWholeWordOnly(t *testing.T) {
	// 短别名按整词匹配："with" 不含整词 "it"，"class" 不含整词 "ds"
	if got, found := DepartmentTable.Resolve("struggling with homework"); found {
		t.Fatalf("误命中院系: %q", got)
	}
	if got, found := SubjectTable.Resolve("my class schedule"); found {
		t.Fatalf("误命中科目: %q", got)
	}
	if got, _ := DepartmentTable.Resolve("any it seniors around"); got != "IT" {
		t.Fatalf("整词 it 未命中: %q", got)
	}
}

func TestResolveDepartments(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"cse students", "CSE"},
		{"computer science dept", "CSE"},
		{"ece juniors", "ECE"},
		{"electrical machines", "EEE"},
		{"mech workshop", "Mechanical"},
	}
	for _, c := range cases {
		if got, _ := DepartmentTable.Resolve(c.input); got != c.want {
			t.Errorf("Resolve(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

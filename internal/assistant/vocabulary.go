// Package assistant 实现了校园助手的核心：词表、意图识别、
// 回复生成与会话状态机。本包内的函数都是确定性的纯函数，
// 对任意字符串输入都不会失败，也不依赖任何外部服务。
package assistant

import "strings"

// vocabEntry 将一组别名映射到一个规范标签。
type vocabEntry struct {
	aliases   []string
	canonical string
}

// Table 是按声明顺序匹配的词表。
//
// 匹配策略为"声明顺序优先"：逐条检查词条，第一个命中的别名决定结果，
// 不做任何特异度排序。这是一个已知的模糊点——如果别名列表之间存在
// 重叠（例如某院系缩写恰好是某科目名的子串），先声明者胜出。
// 因此别名的选择必须避免意外重叠：三个字符以内的短别名按整词匹配，
// 更长的别名按子串匹配，避免 "it" 命中 "with" 这类误伤。
type Table []vocabEntry

// Resolve 在小写输入中查找词表别名，返回第一个命中词条的规范标签。
func (t Table) Resolve(lower string) (string, bool) {
	tokens := tokenize(lower)
	for _, entry := range t {
		for _, alias := range entry.aliases {
			if matchAlias(lower, tokens, alias) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}

// matchAlias 对短别名做整词匹配，对长别名做子串匹配。
func matchAlias(lower string, tokens map[string]struct{}, alias string) bool {
	if len(alias) <= 3 {
		_, ok := tokens[alias]
		return ok
	}
	return strings.Contains(lower, alias)
}

// tokenize 把输入拆分为词的集合。'+'、'#'、'.'、'/' 保留在词内，
// 以便 "c++"、"ui/ux" 这类别名可以整词命中。
func tokenize(lower string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '#', r == '.', r == '/':
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// SubjectTable 是科目词表，规范标签即检索用的科目名。
// 词条顺序与别名取自线上沿用已久的关键词清单，调整前需要评估
// 既有搜索参数的兼容性。
var SubjectTable = Table{
	{aliases: []string{"data structures", "data structure", "dsa", "ds"}, canonical: "Data Structures"},
	{aliases: []string{"algorithms", "algorithm", "algo"}, canonical: "Algorithms"},
	{aliases: []string{"python", "py"}, canonical: "Python"},
	{aliases: []string{"java"}, canonical: "Java"},
	{aliases: []string{"c++", "cpp", "c plus"}, canonical: "C++"},
	{aliases: []string{"javascript", "js"}, canonical: "JavaScript"},
	{aliases: []string{"reactjs", "react.js", "react"}, canonical: "React"},
	{aliases: []string{"web dev", "web development", "web"}, canonical: "Web Development"},
	{aliases: []string{"machine learning", "ml"}, canonical: "Machine Learning"},
	{aliases: []string{"artificial intelligence", "ai"}, canonical: "AI"},
	{aliases: []string{"database", "databases", "dbms", "sql"}, canonical: "Database"},
	{aliases: []string{"operating system", "operating systems", "os"}, canonical: "Operating Systems"},
	{aliases: []string{"computer networks", "networks", "networking", "cn"}, canonical: "Computer Networks"},
	{aliases: []string{"embedded systems", "embedded"}, canonical: "Embedded Systems"},
	{aliases: []string{"ui/ux", "ui", "ux", "design"}, canonical: "UI/UX Design"},
	{aliases: []string{"frontend", "front end", "front-end"}, canonical: "Frontend Development"},
	{aliases: []string{"backend", "back end", "back-end"}, canonical: "Backend Development"},
	{aliases: []string{"fullstack", "full stack", "full-stack"}, canonical: "Full Stack Development"},
	{aliases: []string{"digital electronics", "digital"}, canonical: "Digital Electronics"},
	{aliases: []string{"statistics", "stats"}, canonical: "Statistics"},
	{aliases: []string{"fluid mechanics", "fluids"}, canonical: "Fluid Mechanics"},
	{aliases: []string{"thermodynamics", "thermo"}, canonical: "Thermodynamics"},
}

// DepartmentTable 是院系词表。
var DepartmentTable = Table{
	{aliases: []string{"computer science", "cse"}, canonical: "CSE"},
	{aliases: []string{"information technology", "it"}, canonical: "IT"},
	{aliases: []string{"electronics", "ece"}, canonical: "ECE"},
	{aliases: []string{"electrical", "eee"}, canonical: "EEE"},
	{aliases: []string{"mechanical", "mech"}, canonical: "Mechanical"},
}

package model

// EsProfile 是写入 Elasticsearch 档案索引的文档结构，
// 与 pkg/es 中的索引 mapping 对应。
type EsProfile struct {
	UID           string   `json:"uid"`
	DisplayName   string   `json:"display_name"`
	Department    string   `json:"department,omitempty"`
	Year          string   `json:"year,omitempty"`
	Bio           string   `json:"bio,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	TutorSubjects []string `json:"tutor_subjects,omitempty"`
	IsTutor       bool     `json:"is_tutor"`
	RatingAvg     float64  `json:"rating_avg"`
	RatingCount   int      `json:"rating_count"`
}

// EsProfileFromModel 把数据库档案转换为索引文档。
func EsProfileFromModel(p *UserProfile) EsProfile {
	doc := EsProfile{
		UID:           p.UID,
		DisplayName:   p.DisplayName,
		Bio:           p.Bio,
		Skills:        p.Skills,
		TutorSubjects: p.TutorSubjects,
		IsTutor:       p.IsTutor,
		RatingAvg:     p.TutorStats.RatingAvg,
		RatingCount:   p.TutorStats.RatingCount,
	}
	if p.Department != nil {
		doc.Department = *p.Department
	}
	if p.Year != nil {
		doc.Year = *p.Year
	}
	return doc
}

package repository

import (
	"tutor-connect-go/internal/model"

	"gorm.io/gorm"
)

// ProfileFilter 是档案列表查询的等值过滤条件，空字段表示不过滤。
type ProfileFilter struct {
	Subject    string
	Skill      string
	Department string
}

// ProfileRepository 接口定义了用户档案数据的持久化操作。
type ProfileRepository interface {
	Create(profile *model.UserProfile) error
	FindByUID(uid string) (*model.UserProfile, error)
	Update(profile *model.UserProfile) error
	FindTutors(filter ProfileFilter) ([]model.UserProfile, error)
	FindTeammates(filter ProfileFilter) ([]model.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建一个新的 ProfileRepository 实例。
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create 在数据库中创建一条档案记录，写入前做结构校验。
func (r *profileRepository) Create(profile *model.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return r.db.Create(profile).Error
}

// FindByUID 根据 uid 查找一条档案。
func (r *profileRepository) FindByUID(uid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.First(&profile, "uid = ?", uid).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update 保存一条已存在的档案，写入前做结构校验。
func (r *profileRepository) Update(profile *model.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return r.db.Save(profile).Error
}

// FindTutors 按科目/院系等值条件检索导师档案。
// 这是搜索索引不可用时的数据库兜底路径。
func (r *profileRepository) FindTutors(filter ProfileFilter) ([]model.UserProfile, error) {
	db := r.db.Where("is_tutor = ?", true)
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Subject != "" {
		db = db.Where("JSON_CONTAINS(tutor_subjects, JSON_QUOTE(?))", filter.Subject)
	}
	var profiles []model.UserProfile
	err := db.Find(&profiles).Error
	return profiles, err
}

// FindTeammates 按技能/院系等值条件检索全部档案（组队场景）。
func (r *profileRepository) FindTeammates(filter ProfileFilter) ([]model.UserProfile, error) {
	db := r.db.Model(&model.UserProfile{})
	if filter.Department != "" {
		db = db.Where("department = ?", filter.Department)
	}
	if filter.Skill != "" {
		db = db.Where("JSON_CONTAINS(skills, JSON_QUOTE(?))", filter.Skill)
	}
	var profiles []model.UserProfile
	err := db.Find(&profiles).Error
	return profiles, err
}

package profile

import (
	"errors"

	. "mediverse/pkg/mediverse"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("profile not found")
	ErrNoHandle = errors.New("no codeforces handle on profile")
)

type ProfileService struct {
	db *gorm.DB
	cf *CodeforcesClient
}

func NewProfileService(db *gorm.DB, cf *CodeforcesClient) *ProfileService {
	return &ProfileService{db: db, cf: cf}
}

type UpsertInput struct {
	Batch            string   `json:"batch"`
	Department       string   `json:"department"`
	CGPA             float64  `json:"cgpa"`
	Skills           []string `json:"skills"`
	Interests        []string `json:"interests"`
	Achievements     []string `json:"achievements"`
	Certifications   []string `json:"certifications"`
	Hackathons       []string `json:"hackathons"`
	Publications     []string `json:"publications"`
	Extracurriculars []string `json:"extracurriculars"`
	Github           string   `json:"github"`
	Linkedin         string   `json:"linkedin"`
	Portfolio        string   `json:"portfolio"`
	Leetcode         string   `json:"leetcode"`
	Codeforces       string   `json:"codeforces"`
	Avatar           string   `json:"avatar"`
	CoverImage       string   `json:"coverImage"`
}

// Upsert creates the caller's profile on first write and replaces the sent
// sections afterwards. Fetched CP ratings survive a handle-preserving update.
func (s *ProfileService) Upsert(userID string, in UpsertInput) (*Profile, error) {
	var profile Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		profile = Profile{UserID: userID}
	}

	if in.Leetcode != profile.Leetcode.Username {
		profile.Leetcode = LeetcodeStats{Username: in.Leetcode}
	}
	if in.Codeforces != profile.Codeforces.Handle {
		profile.Codeforces = CodeforcesStats{Handle: in.Codeforces}
	}

	profile.Batch = in.Batch
	profile.Department = in.Department
	profile.CGPA = in.CGPA
	profile.Skills = orEmpty(in.Skills)
	profile.Interests = orEmpty(in.Interests)
	profile.Achievements = orEmpty(in.Achievements)
	profile.Certifications = orEmpty(in.Certifications)
	profile.Hackathons = orEmpty(in.Hackathons)
	profile.Publications = orEmpty(in.Publications)
	profile.Extracurriculars = orEmpty(in.Extracurriculars)
	profile.Github = in.Github
	profile.Linkedin = in.Linkedin
	profile.Portfolio = in.Portfolio
	if in.Avatar != "" {
		profile.Avatar = in.Avatar
	}
	if in.CoverImage != "" {
		profile.CoverImage = in.CoverImage
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) Get(userID string) (*Profile, error) {
	var profile Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (s *ProfileService) Delete(userID string) error {
	return s.db.Where("user_id = ?", userID).Delete(&Profile{}).Error
}

// RefreshStats pulls current Codeforces ratings for the stored handle.
func (s *ProfileService) RefreshStats(userID string) (*Profile, error) {
	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if profile.Codeforces.Handle == "" {
		return nil, ErrNoHandle
	}

	info, err := s.cf.UserInfo(profile.Codeforces.Handle)
	if err != nil {
		return nil, err
	}

	profile.Codeforces.Rating = info.Rating
	profile.Codeforces.MaxRating = info.MaxRating

	if err := s.db.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

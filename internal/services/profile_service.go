package services

import (
	"context"

	"github.com/justsurfingit/talent-tracker/internal/database"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"gorm.io/gorm"
)

// ProfileService manages the recruiters postings can be assigned to.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

func (s *ProfileService) Create(ctx context.Context, req *dtos.UserProfileRequest) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
	}
	if err := s.DB.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return profile, nil
}

// AssignOptions lists recruiters as combobox entries, sorted by name.
func (s *ProfileService) AssignOptions(ctx context.Context) ([]dtos.Option, error) {
	var profiles []models.UserProfile
	if err := s.DB.WithContext(ctx).Select("id", "name").Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	out := make([]dtos.Option, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, dtos.Option{Label: p.Name, Value: uintString(p.ID)})
	}
	return out, nil
}

package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/justsurfingit/talent-tracker/internal/models"
	"gorm.io/gorm"
)

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// FindCandidateFromEmail matches the From header of an email to a candidate.
// The address is tried first; the display name is only trusted when exactly
// one candidate carries it. A nil candidate means no match.
func (s *MatcherService) FindCandidateFromEmail(ctx context.Context, rawSender string) (*models.Candidate, error) {
	// "Jane Doe <jane@example.com>" -> name="jane doe", addr="jane@example.com"
	var senderName, senderAddr string
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(strings.TrimSpace(parsed.Name))
		senderAddr = strings.ToLower(parsed.Address)
	} else {
		senderAddr = strings.ToLower(strings.TrimSpace(rawSender))
	}

	if senderAddr != "" {
		var candidates []models.Candidate
		err := s.candidates(ctx).Where("LOWER(email) = ?", senderAddr).Limit(1).Find(&candidates).Error
		if err != nil {
			return nil, err
		}
		if len(candidates) == 1 {
			return &candidates[0], nil
		}
	}

	// Skip very short names, they match too many people.
	if len(senderName) < 3 {
		return nil, nil
	}
	var candidates []models.Candidate
	if err := s.candidates(ctx).Where("LOWER(name) = ?", senderName).Limit(2).Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) != 1 {
		return nil, nil
	}
	return &candidates[0], nil
}

func (s *MatcherService) candidates(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("JobPosting", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "role") }).
		Order("id ASC")
}

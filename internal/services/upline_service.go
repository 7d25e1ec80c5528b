package services

import (
	"errors"

	"gorm.io/gorm"

	"investment-platform/internal/models"
)

// MaxUplineDepth bounds the sponsor-chain walk. ReferrerID is set exactly once
// at registration, before the referee can have referees of their own, so the
// graph is acyclic; the depth bound is kept anyway.
const MaxUplineDepth = 3

// UplineService resolves the chain of sponsors above a user. Read-only.
type UplineService struct {
	db *gorm.DB
}

func NewUplineService(db *gorm.DB) *UplineService {
	return &UplineService{db: db}
}

// ResolveChain returns ancestor user ids, nearest sponsor first, truncated at
// maxDepth or at the first user without a referrer. A missing or deleted
// ancestor ends the chain early rather than failing.
func (s *UplineService) ResolveChain(userID uint, maxDepth int) ([]uint, error) {
	if maxDepth <= 0 || maxDepth > MaxUplineDepth {
		maxDepth = MaxUplineDepth
	}

	chain := make([]uint, 0, maxDepth)
	current := userID
	for level := 0; level < maxDepth; level++ {
		var user models.User
		err := s.db.Select("id", "referrer_id").Where("id = ?", current).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		if user.ReferrerID == nil {
			break
		}
		chain = append(chain, *user.ReferrerID)
		current = *user.ReferrerID
	}
	return chain, nil
}

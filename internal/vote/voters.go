package vote

import (
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
)

// Voters lists who voted on a target, most recent state change first.
// Disabled accounts are excluded from the listing even though their votes
// still count toward vote_count. Pass None as filter to list both
// directions.
func (e *Engine) Voters(votableID int, kind Kind, filter Type, params pagination.Params) (*pagination.Page[models.User], error) {
	target, err := e.target(kind)
	if err != nil {
		return nil, err
	}
	if err := target.ExistsOrFail(e.db, votableID); err != nil {
		return nil, err
	}

	base := e.db.Model(&models.Vote{}).
		Joins("JOIN users ON users.id = votes.user_id").
		Where("votes.votable_id = ? AND votes.votable_type = ?", votableID, string(kind)).
		Where("users.disabled_at IS NULL")
	if filter == Up || filter == Down {
		base = base.Where("votes.type = ?", string(filter))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	voters := []models.User{}
	err = base.Select("users.*").
		Order("votes.created_at DESC").
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&voters).Error
	if err != nil {
		return nil, err
	}

	return &pagination.Page[models.User]{
		Data:       voters,
		Pagination: pagination.MetaFor(params, total),
	}, nil
}

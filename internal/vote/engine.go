package vote

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
)

// AddVote casts, confirms or flips a vote. The ledger write and the
// counter delta commit together or not at all.
//
//	existing  requested  ledger        counter
//	none      up         insert        +1
//	none      down       insert        -1
//	up        up         no-op          0
//	down      down       no-op          0
//	up        down       update+stamp  -2
//	down      up         update+stamp  +2
func (e *Engine) AddVote(userID, votableID int, kind Kind, voteType Type) error {
	if voteType != Up && voteType != Down {
		return apperr.ErrVoteType
	}
	target, err := e.target(kind)
	if err != nil {
		return err
	}
	if err := e.users.ExistsOrFail(e.db, userID); err != nil {
		return err
	}
	if err := target.ExistsOrFail(e.db, votableID); err != nil {
		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		delta, err := e.transition(tx, userID, votableID, kind, voteType)
		if err != nil {
			return err
		}
		return target.ApplyCounterDelta(tx, votableID, delta)
	})
}

// transition applies the ledger side of one vote action and reports the
// counter delta it implies. A duplicate first-vote insert losing the race
// against a concurrent request is folded into the update path instead of
// surfacing as a conflict.
func (e *Engine) transition(tx *gorm.DB, userID, votableID int, kind Kind, want Type) (int, error) {
	existing, err := e.find(tx, userID, votableID, kind)
	if err != nil {
		return 0, err
	}

	if existing == nil {
		v := models.Vote{
			VotableID:   votableID,
			VotableType: string(kind),
			UserID:      userID,
			Type:        string(want),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&v)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected > 0 {
			if want == Up {
				return 1, nil
			}
			return -1, nil
		}
		// The unique (votable_id, votable_type, user_id) index swallowed
		// our insert, so another request won the first-vote race.
		if existing, err = e.find(tx, userID, votableID, kind); err != nil {
			return 0, err
		}
		if existing == nil {
			return 0, fmt.Errorf("vote upsert for user %d on %s %d resolved to no row", userID, kind, votableID)
		}
	}

	if Type(existing.Type) == want {
		return 0, nil
	}

	err = tx.Model(&models.Vote{}).Where("id = ?", existing.ID).
		UpdateColumns(map[string]interface{}{
			"type":       string(want),
			"created_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return 0, err
	}
	// Flip removes the old direction and applies the new one in a single
	// counter operation.
	if want == Up {
		return 2, nil
	}
	return -2, nil
}

// DeleteVote retracts a vote. Retracting a vote that does not exist is a
// silent success.
func (e *Engine) DeleteVote(userID, votableID int, kind Kind) error {
	target, err := e.target(kind)
	if err != nil {
		return err
	}
	if err := e.users.ExistsOrFail(e.db, userID); err != nil {
		return err
	}
	if err := target.ExistsOrFail(e.db, votableID); err != nil {
		return err
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		existing, err := e.find(tx, userID, votableID, kind)
		if err != nil || existing == nil {
			return err
		}

		res := tx.Delete(&models.Vote{}, existing.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already retracted by a concurrent request.
			return nil
		}

		delta := -1
		if Type(existing.Type) == Down {
			delta = 1
		}
		return target.ApplyCounterDelta(tx, votableID, delta)
	})
}

// VoteCount reads the target's denormalized counter. The ledger is never
// aggregated at read time.
func (e *Engine) VoteCount(votableID int, kind Kind) (int, error) {
	target, err := e.target(kind)
	if err != nil {
		return 0, err
	}
	return target.VoteCount(e.db, votableID)
}

func (e *Engine) find(tx *gorm.DB, userID, votableID int, kind Kind) (*models.Vote, error) {
	var v models.Vote
	err := tx.Where("user_id = ? AND votable_id = ? AND votable_type = ?",
		userID, votableID, string(kind)).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

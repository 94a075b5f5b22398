package vote

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
)

// tableTarget adapts one entity table to the Target capability. All four
// voteable kinds share it; only the model and the not-found error differ.
type tableTarget struct {
	model    func() interface{}
	notFound *apperr.Error
}

func (t tableTarget) ExistsOrFail(db *gorm.DB, id int) error {
	var n int64
	if err := db.Model(t.model()).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return t.notFound
	}
	return nil
}

// ApplyCounterDelta issues `vote_count = vote_count + delta` server-side.
// The column is never read back and rewritten, so concurrent voters and
// unrelated row updates cannot clobber each other.
func (t tableTarget) ApplyCounterDelta(db *gorm.DB, id, delta int) error {
	if delta == 0 {
		return nil
	}
	return db.Model(t.model()).Where("id = ?", id).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta)).Error
}

func (t tableTarget) VoteCount(db *gorm.DB, id int) (int, error) {
	var count int
	row := db.Model(t.model()).Select("vote_count").Where("id = ?", id).Row()
	if err := row.Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, t.notFound
		}
		return 0, err
	}
	return count, nil
}

// DefaultTargets maps each votable kind to its table adapter.
func DefaultTargets() map[Kind]Target {
	return map[Kind]Target{
		KindQuestion: tableTarget{model: func() interface{} { return &models.Question{} }, notFound: apperr.ErrQuestionNotFound},
		KindAnswer:   tableTarget{model: func() interface{} { return &models.Answer{} }, notFound: apperr.ErrAnswerNotFound},
		KindArticle:  tableTarget{model: func() interface{} { return &models.Article{} }, notFound: apperr.ErrArticleNotFound},
		KindComment:  tableTarget{model: func() interface{} { return &models.Comment{} }, notFound: apperr.ErrCommentNotFound},
	}
}

// Package vote implements the polymorphic voting engine: one ledger of
// per-user votes shared by questions, answers, articles and comments, plus
// a denormalized vote_count column on each target row that is only ever
// mutated through atomic deltas.
package vote

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
)

// Type is a vote direction. The zero value None is never stored in the
// ledger; absence of a row means no vote.
type Type string

const (
	Up   Type = "up"
	Down Type = "down"
	None Type = ""
)

// Kind tags which entity table a vote targets. The tag is stored in
// votes.votable_type.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
	KindArticle  Kind = "article"
	KindComment  Kind = "comment"
)

// ParseKind validates a kind tag from the outside world.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindQuestion, KindAnswer, KindArticle, KindComment:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown votable kind %q", s)
}

// Target is the capability each voteable entity kind provides to the
// engine. Implementations must apply counter changes as relative deltas
// executed server-side, never as whole-row writes.
type Target interface {
	ExistsOrFail(db *gorm.DB, id int) error
	ApplyCounterDelta(db *gorm.DB, id, delta int) error
	VoteCount(db *gorm.DB, id int) (int, error)
}

// UserDirectory resolves voters. ExistsOrFail fails with the user
// not-found error for both missing and disabled accounts.
type UserDirectory interface {
	ExistsOrFail(db *gorm.DB, userID int) error
}

// Engine orchestrates ledger and counter mutations for one logical vote
// action. Collaborators are injected; no ambient lookups.
type Engine struct {
	db      *gorm.DB
	users   UserDirectory
	targets map[Kind]Target
}

func NewEngine(db *gorm.DB, users UserDirectory, targets map[Kind]Target) *Engine {
	return &Engine{db: db, users: users, targets: targets}
}

// NewDefaultEngine wires the engine against the standard user directory
// and the four built-in target kinds.
func NewDefaultEngine(db *gorm.DB) *Engine {
	return NewEngine(db, DBUserDirectory{}, DefaultTargets())
}

func (e *Engine) target(kind Kind) (Target, error) {
	t, ok := e.targets[kind]
	if !ok {
		return nil, fmt.Errorf("unknown votable kind %q", kind)
	}
	return t, nil
}

// DBUserDirectory is the gorm-backed UserDirectory. Disabled accounts
// cannot cast or retract votes, though their historical votes still count.
type DBUserDirectory struct{}

func (DBUserDirectory) ExistsOrFail(db *gorm.DB, userID int) error {
	var n int64
	if err := db.Model(&models.User{}).
		Where("id = ? AND disabled_at IS NULL", userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

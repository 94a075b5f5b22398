package vote_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/testutil"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

func ledgerFor(t *testing.T, db *gorm.DB, votableID int, kind vote.Kind) []models.Vote {
	t.Helper()
	var rows []models.Vote
	err := db.Where("votable_id = ? AND votable_type = ?", votableID, string(kind)).Find(&rows).Error
	require.NoError(t, err)
	return rows
}

// recountFromLedger recomputes what vote_count should be, straight from
// the ledger.
func recountFromLedger(t *testing.T, db *gorm.DB, votableID int, kind vote.Kind) int {
	t.Helper()
	var up, down int64
	require.NoError(t, db.Model(&models.Vote{}).
		Where("votable_id = ? AND votable_type = ? AND type = ?", votableID, string(kind), "up").
		Count(&up).Error)
	require.NoError(t, db.Model(&models.Vote{}).
		Where("votable_id = ? AND votable_type = ? AND type = ?", votableID, string(kind), "down").
		Count(&down).Error)
	return int(up - down)
}

func TestAddVoteTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	article := testutil.CreateArticle(t, db, author.ID, "transitions")

	t.Run("first up vote", func(t *testing.T) {
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		rows := ledgerFor(t, db, article.ID, vote.KindArticle)
		require.Len(t, rows, 1)
		require.Equal(t, "up", rows[0].Type)
	})

	t.Run("repeat up vote is a no-op", func(t *testing.T) {
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 1, count)
		require.Len(t, ledgerFor(t, db, article.ID, vote.KindArticle), 1)
	})

	t.Run("flip to down moves counter by -2", func(t *testing.T) {
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Down))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, -1, count)

		rows := ledgerFor(t, db, article.ID, vote.KindArticle)
		require.Len(t, rows, 1)
		require.Equal(t, "down", rows[0].Type)
	})

	t.Run("flip back to up moves counter by +2", func(t *testing.T) {
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 1, count)
		require.Len(t, ledgerFor(t, db, article.ID, vote.KindArticle), 1)
	})
}

func TestAddVoteValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	article := testutil.CreateArticle(t, db, author.ID, "validation")

	t.Run("invalid vote type", func(t *testing.T) {
		err := engine.AddVote(voter.ID, article.ID, vote.KindArticle, "sideways")
		require.ErrorIs(t, err, apperr.ErrVoteType)
	})

	t.Run("missing user", func(t *testing.T) {
		err := engine.AddVote(99999, article.ID, vote.KindArticle, vote.Up)
		require.ErrorIs(t, err, apperr.ErrUserNotFound)
	})

	t.Run("missing target", func(t *testing.T) {
		err := engine.AddVote(voter.ID, 99999, vote.KindArticle, vote.Up)
		require.ErrorIs(t, err, apperr.ErrArticleNotFound)
	})

	t.Run("disabled user cannot vote", func(t *testing.T) {
		disabled := testutil.CreateUser(t, db, "disabled")
		testutil.DisableUser(t, db, disabled.ID)

		err := engine.AddVote(disabled.ID, article.ID, vote.KindArticle, vote.Up)
		require.ErrorIs(t, err, apperr.ErrUserNotFound)
	})

	// No partial mutation after any of the failures above
	count, err := engine.VoteCount(article.ID, vote.KindArticle)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	require.Empty(t, ledgerFor(t, db, article.ID, vote.KindArticle))
}

func TestDeleteVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	article := testutil.CreateArticle(t, db, author.ID, "retraction")

	t.Run("retracting an up vote decrements", func(t *testing.T) {
		voter := testutil.CreateUser(t, db, "upvoter")
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))
		require.NoError(t, engine.DeleteVote(voter.ID, article.ID, vote.KindArticle))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 0, count)
		require.Empty(t, ledgerFor(t, db, article.ID, vote.KindArticle))
	})

	t.Run("retracting a down vote increments", func(t *testing.T) {
		voter := testutil.CreateUser(t, db, "downvoter")
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Down))
		require.NoError(t, engine.DeleteVote(voter.ID, article.ID, vote.KindArticle))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 0, count)
	})

	t.Run("retracting a non-existent vote is a silent success", func(t *testing.T) {
		voter := testutil.CreateUser(t, db, "abstainer")
		require.NoError(t, engine.DeleteVote(voter.ID, article.ID, vote.KindArticle))

		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, 0, count)
		require.Empty(t, ledgerFor(t, db, article.ID, vote.KindArticle))
	})
}

func TestCounterMatchesLedgerAfterEveryStep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	question := testutil.CreateQuestion(t, db, author.ID, "ledger-vs-counter")

	var users []models.User
	for i := 0; i < 4; i++ {
		users = append(users, testutil.CreateUser(t, db, fmt.Sprintf("stepper%d", i)))
	}

	steps := []struct {
		user   int
		action string
		typ    vote.Type
	}{
		{0, "add", vote.Up},
		{1, "add", vote.Down},
		{2, "add", vote.Up},
		{0, "add", vote.Down}, // flip
		{1, "delete", vote.None},
		{3, "add", vote.Down},
		{0, "add", vote.Down}, // no-op
		{2, "delete", vote.None},
		{3, "add", vote.Up}, // flip
	}

	for i, step := range steps {
		var err error
		if step.action == "add" {
			err = engine.AddVote(users[step.user].ID, question.ID, vote.KindQuestion, step.typ)
		} else {
			err = engine.DeleteVote(users[step.user].ID, question.ID, vote.KindQuestion)
		}
		require.NoError(t, err, "step %d", i)

		count, err := engine.VoteCount(question.ID, vote.KindQuestion)
		require.NoError(t, err)
		require.Equal(t, recountFromLedger(t, db, question.ID, vote.KindQuestion), count,
			"counter diverged from ledger at step %d", i)
	}
}

func TestConcurrentFirstVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	article := testutil.CreateArticle(t, db, author.ID, "contended")

	const n = 20
	var users []models.User
	for i := 0; i < n; i++ {
		users = append(users, testutil.CreateUser(t, db, fmt.Sprintf("racer%d", i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			errs <- engine.AddVote(userID, article.ID, vote.KindArticle, vote.Up)
		}(users[i].ID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := engine.VoteCount(article.ID, vote.KindArticle)
	require.NoError(t, err)
	require.Equal(t, n, count)
	require.Len(t, ledgerFor(t, db, article.ID, vote.KindArticle), n)
}

func TestConcurrentDuplicateVotesCollapse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "retrier")
	article := testutil.CreateArticle(t, db, author.ID, "duplicated")

	// Same user fires the same first vote several times at once, as a
	// duplicated network retry would.
	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := engine.VoteCount(article.ID, vote.KindArticle)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Len(t, ledgerFor(t, db, article.ID, vote.KindArticle), 1)
}

func TestEndToEndScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	userA := testutil.CreateUser(t, db, "alice")
	userB := testutil.CreateUser(t, db, "bob")
	article := testutil.CreateArticle(t, db, author.ID, "scenario")

	assertCount := func(want int) {
		t.Helper()
		count, err := engine.VoteCount(article.ID, vote.KindArticle)
		require.NoError(t, err)
		require.Equal(t, want, count)
	}

	require.NoError(t, engine.AddVote(userA.ID, article.ID, vote.KindArticle, vote.Up))
	assertCount(1)

	require.NoError(t, engine.AddVote(userB.ID, article.ID, vote.KindArticle, vote.Down))
	assertCount(0)

	require.NoError(t, engine.AddVote(userA.ID, article.ID, vote.KindArticle, vote.Down))
	assertCount(-2)

	require.NoError(t, engine.DeleteVote(userA.ID, article.ID, vote.KindArticle))
	assertCount(-1)

	rows := ledgerFor(t, db, article.ID, vote.KindArticle)
	require.Len(t, rows, 1)
	require.Equal(t, userB.ID, rows[0].UserID)
	require.Equal(t, "down", rows[0].Type)
}

func TestVoteCountUnknownTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	_, err := engine.VoteCount(42, vote.KindQuestion)
	require.ErrorIs(t, err, apperr.ErrQuestionNotFound)
}

package vote_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guxingjinguang/mdclub/internal/apperr"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
	"github.com/guxingjinguang/mdclub/internal/testutil"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

func TestVoters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	question := testutil.CreateQuestion(t, db, author.ID, "who voted")

	up1 := testutil.CreateUser(t, db, "up1")
	up2 := testutil.CreateUser(t, db, "up2")
	down1 := testutil.CreateUser(t, db, "down1")
	ghost := testutil.CreateUser(t, db, "ghost")

	require.NoError(t, engine.AddVote(up1.ID, question.ID, vote.KindQuestion, vote.Up))
	require.NoError(t, engine.AddVote(up2.ID, question.ID, vote.KindQuestion, vote.Up))
	require.NoError(t, engine.AddVote(down1.ID, question.ID, vote.KindQuestion, vote.Down))
	require.NoError(t, engine.AddVote(ghost.ID, question.ID, vote.KindQuestion, vote.Up))

	// Disabled after voting: hidden from the listing, vote still counted
	testutil.DisableUser(t, db, ghost.ID)

	// Spread the vote timestamps so ordering is deterministic
	base := time.Now().UTC().Add(-time.Hour)
	voterIDs := []int{up1.ID, up2.ID, down1.ID, ghost.ID}
	for i, id := range voterIDs {
		require.NoError(t, db.Model(&models.Vote{}).
			Where("user_id = ? AND votable_id = ? AND votable_type = ?", id, question.ID, "question").
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	params := pagination.Params{Page: 1, PerPage: 10}

	t.Run("all voters, most recent first, disabled excluded", func(t *testing.T) {
		page, err := engine.Voters(question.ID, vote.KindQuestion, vote.None, params)
		require.NoError(t, err)

		require.Equal(t, int64(3), page.Pagination.Total)
		require.Len(t, page.Data, 3)
		require.Equal(t, "down1", page.Data[0].Username)
		require.Equal(t, "up2", page.Data[1].Username)
		require.Equal(t, "up1", page.Data[2].Username)
	})

	t.Run("disabled votes still count toward the target", func(t *testing.T) {
		count, err := engine.VoteCount(question.ID, vote.KindQuestion)
		require.NoError(t, err)
		require.Equal(t, 2, count) // 3 up - 1 down
	})

	t.Run("filter by up", func(t *testing.T) {
		page, err := engine.Voters(question.ID, vote.KindQuestion, vote.Up, params)
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		for _, u := range page.Data {
			require.Contains(t, []string{"up1", "up2"}, u.Username)
		}
	})

	t.Run("filter by down", func(t *testing.T) {
		page, err := engine.Voters(question.ID, vote.KindQuestion, vote.Down, params)
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		require.Equal(t, "down1", page.Data[0].Username)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := engine.Voters(99999, vote.KindQuestion, vote.None, params)
		require.ErrorIs(t, err, apperr.ErrQuestionNotFound)
	})
}

func TestVotersPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	article := testutil.CreateArticle(t, db, author.ID, "popular")

	for i := 0; i < 7; i++ {
		voter := testutil.CreateUser(t, db, fmt.Sprintf("fan%d", i))
		require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))
	}

	page1, err := engine.Voters(article.ID, vote.KindArticle, vote.None, pagination.Params{Page: 1, PerPage: 3})
	require.NoError(t, err)
	require.Len(t, page1.Data, 3)
	require.Equal(t, int64(7), page1.Pagination.Total)
	require.Equal(t, 3, page1.Pagination.Pages)

	page3, err := engine.Voters(article.ID, vote.KindArticle, vote.None, pagination.Params{Page: 3, PerPage: 3})
	require.NoError(t, err)
	require.Len(t, page3.Data, 1)

	// No voter appears on two pages
	seen := map[int]bool{}
	for _, p := range []*pagination.Page[models.User]{page1, page3} {
		for _, u := range p.Data {
			require.False(t, seen[u.ID])
			seen[u.ID] = true
		}
	}
}

func TestVotersNeverExposesPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	article := testutil.CreateArticle(t, db, author.ID, "private")
	require.NoError(t, engine.AddVote(voter.ID, article.ID, vote.KindArticle, vote.Up))

	page, err := engine.Voters(article.ID, vote.KindArticle, vote.None, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	// The password column is json-suppressed on the model; the listing
	// payload must not contain it.
	out, err := json.Marshal(page)
	require.NoError(t, err)
	require.NotContains(t, string(out), "not-a-real-hash")
	require.NotContains(t, string(out), "password")
}

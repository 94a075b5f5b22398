package vote_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/testutil"
	"github.com/guxingjinguang/mdclub/internal/vote"
)

func TestVotingInRelationshipBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	viewer := testutil.CreateUser(t, db, "viewer")

	// 500 candidate ids; the viewer voted up on 10 and down on 5. The
	// ledger rows are seeded directly, the aggregator never checks
	// target existence.
	ids := make([]int, 0, 500)
	for i := 1; i <= 500; i++ {
		ids = append(ids, i)
	}
	for i := 1; i <= 10; i++ {
		require.NoError(t, db.Create(&models.Vote{
			VotableID: i, VotableType: "article", UserID: viewer.ID, Type: "up",
		}).Error)
	}
	for i := 11; i <= 15; i++ {
		require.NoError(t, db.Create(&models.Vote{
			VotableID: i, VotableType: "article", UserID: viewer.ID, Type: "down",
		}).Error)
	}

	result, err := engine.VotingInRelationship(ids, vote.KindArticle, viewer.ID)
	require.NoError(t, err)
	require.Len(t, result, 500)

	for i := 1; i <= 500; i++ {
		want := vote.None
		switch {
		case i <= 10:
			want = vote.Up
		case i <= 15:
			want = vote.Down
		}
		require.Equal(t, want, result[i], "id %d", i)
	}
}

func TestVotingInRelationshipKindIsolation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	viewer := testutil.CreateUser(t, db, "viewer")
	require.NoError(t, db.Create(&models.Vote{
		VotableID: 7, VotableType: "question", UserID: viewer.ID, Type: "up",
	}).Error)

	// An article with the same id must not pick up the question's vote
	result, err := engine.VotingInRelationship([]int{7}, vote.KindArticle, viewer.ID)
	require.NoError(t, err)
	require.Equal(t, vote.None, result[7])
}

func TestVotingInRelationshipDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	t.Run("empty id set", func(t *testing.T) {
		result, err := engine.VotingInRelationship(nil, vote.KindArticle, 1)
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		result, err := engine.VotingInRelationship([]int{1, 2, 3}, vote.KindArticle, 0)
		require.NoError(t, err)
		require.Len(t, result, 3)
		for id, typ := range result {
			require.Equal(t, vote.None, typ, "id %d", id)
		}
	})
}

func TestVotingInRelationshipOnlyViewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := vote.NewDefaultEngine(db)

	viewer := testutil.CreateUser(t, db, "viewer")
	for i := 0; i < 3; i++ {
		other := testutil.CreateUser(t, db, fmt.Sprintf("other%d", i))
		require.NoError(t, db.Create(&models.Vote{
			VotableID: 1, VotableType: "article", UserID: other.ID, Type: "up",
		}).Error)
	}

	result, err := engine.VotingInRelationship([]int{1}, vote.KindArticle, viewer.ID)
	require.NoError(t, err)
	require.Equal(t, vote.None, result[1])
}

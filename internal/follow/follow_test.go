package follow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guxingjinguang/mdclub/internal/follow"
	"github.com/guxingjinguang/mdclub/internal/models"
	"github.com/guxingjinguang/mdclub/internal/pagination"
	"github.com/guxingjinguang/mdclub/internal/testutil"
)

func TestFollowUnfollow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := follow.NewService(db)

	author := testutil.CreateUser(t, db, "author")
	fan := testutil.CreateUser(t, db, "fan")
	question := testutil.CreateQuestion(t, db, author.ID, "followed")

	require.NoError(t, svc.Follow(fan.ID, question.ID, follow.KindQuestion))

	// Following twice collapses to a single edge
	require.NoError(t, svc.Follow(fan.ID, question.ID, follow.KindQuestion))

	var n int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ? AND followable_id = ? AND followable_type = ?", fan.ID, question.ID, "question").
		Count(&n).Error)
	require.Equal(t, int64(1), n)

	require.NoError(t, svc.Unfollow(fan.ID, question.ID, follow.KindQuestion))

	// Unfollowing again is a silent success
	require.NoError(t, svc.Unfollow(fan.ID, question.ID, follow.KindQuestion))

	require.NoError(t, db.Model(&models.Follow{}).
		Where("user_id = ?", fan.ID).Count(&n).Error)
	require.Equal(t, int64(0), n)
}

func TestIsFollowingInRelationship(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := follow.NewService(db)

	author := testutil.CreateUser(t, db, "author")
	viewer := testutil.CreateUser(t, db, "viewer")

	var followed, unfollowed []int
	for i := 0; i < 3; i++ {
		q := testutil.CreateQuestion(t, db, author.ID, "followed")
		require.NoError(t, svc.Follow(viewer.ID, q.ID, follow.KindQuestion))
		followed = append(followed, q.ID)
	}
	for i := 0; i < 2; i++ {
		q := testutil.CreateQuestion(t, db, author.ID, "ignored")
		unfollowed = append(unfollowed, q.ID)
	}

	ids := append(append([]int{}, followed...), unfollowed...)
	result, err := svc.IsFollowingInRelationship(ids, follow.KindQuestion, viewer.ID)
	require.NoError(t, err)
	require.Len(t, result, 5)

	for _, id := range followed {
		require.True(t, result[id], "id %d", id)
	}
	for _, id := range unfollowed {
		require.False(t, result[id], "id %d", id)
	}

	// Anonymous viewer gets an all-false map
	anon, err := svc.IsFollowingInRelationship(ids, follow.KindQuestion, 0)
	require.NoError(t, err)
	for _, id := range ids {
		require.False(t, anon[id])
	}
}

func TestFollowers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := follow.NewService(db)

	topic := models.Topic{Name: "golang"}
	require.NoError(t, db.Create(&topic).Error)

	active := testutil.CreateUser(t, db, "active")
	hidden := testutil.CreateUser(t, db, "hidden")
	require.NoError(t, svc.Follow(active.ID, topic.ID, follow.KindTopic))
	require.NoError(t, svc.Follow(hidden.ID, topic.ID, follow.KindTopic))
	testutil.DisableUser(t, db, hidden.ID)

	page, err := svc.Followers(topic.ID, follow.KindTopic, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "active", page.Data[0].Username)
}

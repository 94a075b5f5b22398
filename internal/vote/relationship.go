package vote

import "github.com/guxingjinguang/mdclub/internal/models"

// VotingInRelationship returns the viewer's current vote for every id in
// votableIDs, defaulting ids the viewer never voted on to None. One
// batched query regardless of batch size; list pages hand in hundreds of
// ids at a time.
func (e *Engine) VotingInRelationship(votableIDs []int, kind Kind, viewerID int) (map[int]Type, error) {
	result := make(map[int]Type, len(votableIDs))
	for _, id := range votableIDs {
		result[id] = None
	}
	if len(votableIDs) == 0 || viewerID == 0 {
		return result, nil
	}

	var rows []models.Vote
	err := e.db.
		Where("user_id = ? AND votable_type = ? AND votable_id IN ?",
			viewerID, string(kind), votableIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, v := range rows {
		result[v.VotableID] = Type(v.Type)
	}
	return result, nil
}

package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grievease/petition-client-go/internal/model"
)

func detailView() []model.Petition {
	return []model.Petition{{
		PetitionID:       42,
		Title:            "Pothole on MG Road",
		ShortDescription: "Deep pothole near the bus stop",
		Category:         "Roads",
		Department:       "Public Works",
		Status:           model.StatusSubmitted,
		UrgencyLevel:     model.UrgencyHigh,
		Location:         "MG Road",
		ProofFiles:       []string{"pothole.jpg"},
	}}
}

func TestApply(t *testing.T) {
	t.Run("bare array replaces the list view", func(t *testing.T) {
		view := []model.Petition{{PetitionID: 1, Title: "Old"}}
		raw := []byte(`[{"petition_id": 2, "title": "New", "status": "submitted"}]`)

		next, action, err := Apply(view, raw, ModeList)
		require.NoError(t, err)
		assert.Equal(t, ActionNone, action)
		require.Len(t, next, 1)
		assert.Equal(t, int64(2), next[0].PetitionID)
		assert.Equal(t, "New", next[0].Title)
	})

	t.Run("update envelope replaces the list view", func(t *testing.T) {
		view := []model.Petition{{PetitionID: 1}}
		raw := []byte(`{"type": "update", "petitions": [{"petition_id": 2}, {"petition_id": 3}]}`)

		next, action, err := Apply(view, raw, ModeList)
		require.NoError(t, err)
		assert.Equal(t, ActionNone, action)
		require.Len(t, next, 2)
		assert.Equal(t, int64(3), next[1].PetitionID)
	})

	t.Run("empty petitions array empties the list view", func(t *testing.T) {
		next, action, err := Apply([]model.Petition{{PetitionID: 1}}, []byte(`{"type": "update", "petitions": []}`), ModeList)
		require.NoError(t, err)
		assert.Equal(t, ActionNone, action)
		assert.Empty(t, next)
	})

	t.Run("detail merge overwrites only pushed fields", func(t *testing.T) {
		raw := []byte(`{"type": "update", "petitions": [{"petition_id": 42, "status": "resolved"}]}`)

		next, action, err := Apply(detailView(), raw, ModeDetail)
		require.NoError(t, err)
		assert.Equal(t, ActionNone, action)
		require.Len(t, next, 1)
		assert.Equal(t, model.StatusResolved, next[0].Status)
		assert.Equal(t, "Pothole on MG Road", next[0].Title)
		assert.Equal(t, "Deep pothole near the bus stop", next[0].ShortDescription)
		assert.Equal(t, model.UrgencyHigh, next[0].UrgencyLevel)
		assert.Equal(t, []string{"pothole.jpg"}, next[0].ProofFiles)
	})

	t.Run("detail merge ignores other ids", func(t *testing.T) {
		raw := []byte(`{"type": "update", "petitions": [{"petition_id": 99, "status": "rejected"}]}`)

		next, _, err := Apply(detailView(), raw, ModeDetail)
		require.NoError(t, err)
		assert.Equal(t, detailView(), next)
	})

	t.Run("envelope without petitions requests a re-fetch", func(t *testing.T) {
		view := detailView()
		next, action, err := Apply(view, []byte(`{"type": "update"}`), ModeDetail)
		require.NoError(t, err)
		assert.Equal(t, ActionRefetch, action)
		assert.Equal(t, view, next)
	})

	t.Run("malformed message leaves the view untouched", func(t *testing.T) {
		view := detailView()
		next, action, err := Apply(view, []byte(`"not a message"`), ModeDetail)
		require.Error(t, err)
		assert.Equal(t, ActionNone, action)
		assert.Equal(t, view, next)
	})

	t.Run("last message wins", func(t *testing.T) {
		view := detailView()
		var err error
		view, _, err = Apply(view, []byte(`{"type":"update","petitions":[{"petition_id":42,"status":"resolved"}]}`), ModeDetail)
		require.NoError(t, err)
		view, _, err = Apply(view, []byte(`{"type":"update","petitions":[{"petition_id":42,"status":"under_review"}]}`), ModeDetail)
		require.NoError(t, err)
		assert.Equal(t, model.StatusUnderReview, view[0].Status)
	})
}

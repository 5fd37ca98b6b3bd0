package memory

import (
	"testing"

	"ai-chatbot-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	_, found := repo.Get("missing")
	assert.False(t, found)

	session := store.NewSession("sess-1")
	session.SelectedModel = store.ModelMovie
	session.Append(store.SpeakerUser, "hello")
	repo.Save(session)

	got, found := repo.Get("sess-1")
	require.True(t, found)
	assert.Equal(t, store.ModelMovie, got.SelectedModel)
	require.Len(t, got.Transcript, 1)
	assert.Equal(t, "hello", got.Transcript[0].Text)

	repo.Delete("sess-1")
	_, found = repo.Get("sess-1")
	assert.False(t, found)
}

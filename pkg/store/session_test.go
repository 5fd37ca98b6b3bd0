package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendDeduplicatesConsecutiveEntries(t *testing.T) {
	s := NewSession("s1")

	s.Append(SpeakerBot, "سلام")
	s.Append(SpeakerBot, "سلام")
	assert.Len(t, s.Transcript, 1)

	// Same text from the other speaker is a different entry.
	s.Append(SpeakerUser, "سلام")
	assert.Len(t, s.Transcript, 2)

	// Non-adjacent repeats are allowed.
	s.Append(SpeakerBot, "سلام")
	assert.Len(t, s.Transcript, 3)
}

func TestAppendIgnoresEmptyText(t *testing.T) {
	s := NewSession("s1")
	s.Append(SpeakerUser, "")
	assert.Empty(t, s.Transcript)
}

func TestResetKeepsSelectedModel(t *testing.T) {
	s := NewSession("s1")
	s.SelectedModel = ModelDiabetes
	s.Append(SpeakerUser, "2")
	s.Diabetes.Step = StepCollectingFields
	s.Diabetes.FieldCursor = 3
	s.PendingOptions = []string{"Batman", "Batman Begins"}
	s.PendingQuery = "batman"

	s.Reset()

	assert.Equal(t, ModelDiabetes, s.SelectedModel)
	assert.Empty(t, s.Transcript)
	assert.Equal(t, StepNone, s.Diabetes.Step)
	assert.Zero(t, s.Diabetes.FieldCursor)
	assert.False(t, s.AwaitingDisambiguation())
	assert.Empty(t, s.PendingQuery)
}

func TestCurrentFieldIndex(t *testing.T) {
	var st DiabetesState
	assert.Equal(t, -1, st.CurrentFieldIndex())

	st.Step = StepCollectingFields
	st.FieldCursor = 2
	assert.Equal(t, 2, st.CurrentFieldIndex())
}

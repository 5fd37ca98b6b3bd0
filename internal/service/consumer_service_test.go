package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveMessageIdIsStableAcrossRedelivery(t *testing.T) {
	first := archiveMessageId("event-42", 0)
	again := archiveMessageId("event-42", 0)
	assert.Equal(t, first, again, "redelivered events must produce the same row ids")
}

func TestArchiveMessageIdDistinguishesEntries(t *testing.T) {
	assert.NotEqual(t, archiveMessageId("event-42", 0), archiveMessageId("event-42", 1))
	assert.NotEqual(t, archiveMessageId("event-42", 0), archiveMessageId("event-43", 0))
}

// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService archives completed turns to Postgres so the chat history
// survives the in-memory session cache.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishArchiveTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal archive message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	sessionId, err := uuid.Parse(payload.SessionId)
	if err != nil {
		log.Printf("[ERROR] Archive message carries a non-uuid session id %q: %v", payload.SessionId, err)
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin archive transaction: %v", err)
		msg.Nack()
		return
	}

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to look up chat session %s: %v", sessionId, err)
		uow.Rollback()
		msg.Nack()
		return
	}

	if session == nil {
		session = &entity.ChatSession{
			Id:            sessionId,
			Title:         payload.Title,
			SelectedModel: payload.SelectedModel,
			State:         payload.State,
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
	} else {
		session.SelectedModel = payload.SelectedModel
		session.State = payload.State
		err = uow.ChatSessionRepository().Update(ctx, session)
	}
	if err != nil {
		log.Printf("[ERROR] Failed to upsert chat session %s: %v", sessionId, err)
		uow.Rollback()
		msg.Nack()
		return
	}

	entries := make([]*entity.ChatMessage, len(payload.Messages))
	for i, m := range payload.Messages {
		entries[i] = &entity.ChatMessage{
			Id:            archiveMessageId(msg.UUID, i),
			Chat:          m.Chat,
			Role:          m.Role,
			ChatSessionId: sessionId,
		}
	}
	if err := uow.ChatMessageRepository().CreateBatch(ctx, entries); err != nil {
		log.Printf("[ERROR] Failed to archive %d messages for session %s: %v", len(entries), sessionId, err)
		uow.Rollback()
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit archive transaction for session %s: %v", sessionId, err)
		msg.Nack()
		return
	}

	msg.Ack()
}

// archiveMessageId derives a stable id from the event id and the entry's
// position in it. A Nacked event keeps its id on redelivery, so re-running
// the insert produces the same rows instead of duplicates.
func archiveMessageId(eventId string, index int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", eventId, index)))
}

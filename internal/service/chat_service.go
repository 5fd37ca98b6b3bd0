package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/websocket"
	"ai-chatbot-be/pkg/ocr"
	"ai-chatbot-be/pkg/recommend"
	"ai-chatbot-be/pkg/risk"
	"ai-chatbot-be/pkg/store"
	"ai-chatbot-be/pkg/textnorm"

	"github.com/google/uuid"
)

// IChatService drives the conversational front-end: one call per user turn,
// with all dialogue state kept in the session store between calls.
type IChatService interface {
	SendChat(ctx context.Context, request *dto.SendChatRequest, image []byte, imageName string) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, sessionId string) ([]*dto.GetChatHistoryResponse, error)
	ClearHistory(ctx context.Context, sessionId string) error
	Recommend(ctx context.Context, query string) *dto.RecommendResponse
}

type chatService struct {
	sessionRepo *memory.SessionRepository
	uowFactory  unitofwork.RepositoryFactory
	predictor   risk.Predictor
	resolver    *recommend.Resolver
	extractor   ocr.EvidenceExtractor
	publisher   IPublisherService
	hub         *websocket.Hub
	logger      logger.ILogger
}

func NewChatService(
	sessionRepo *memory.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
	predictor risk.Predictor,
	resolver *recommend.Resolver,
	extractor ocr.EvidenceExtractor,
	publisher IPublisherService,
	hub *websocket.Hub,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		sessionRepo: sessionRepo,
		uowFactory:  uowFactory,
		predictor:   predictor,
		resolver:    resolver,
		extractor:   extractor,
		publisher:   publisher,
		hub:         hub,
		logger:      sysLogger,
	}
}

// SendChat processes exactly one turn. The session is loaded once, mutated in
// memory while the turn is handled, and saved back exactly once at the end.
func (s *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest, image []byte, imageName string) (*dto.SendChatResponse, error) {
	sessionId := strings.TrimSpace(request.SessionId)
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	session, found := s.sessionRepo.Get(sessionId)
	if !found {
		session = store.NewSession(sessionId)
		session.Append(store.SpeakerBot, constant.MsgGreeting)
	}

	mark := len(session.Transcript)
	input := strings.TrimSpace(request.Message)

	switch {
	case request.Model != "" && input == "" && image == nil:
		s.selectModel(session, request.Model)
	case session.SelectedModel == store.ModelDiabetes:
		s.handleDiabetes(ctx, session, input, image, imageName)
	case session.SelectedModel == store.ModelMovie:
		s.handleMovie(ctx, session, input)
	default:
		if input != "" {
			session.Append(store.SpeakerUser, input)
		}
		session.Append(store.SpeakerBot, constant.MsgGreeting)
	}

	delta := session.Transcript[mark:]
	s.sessionRepo.Save(session)

	s.archiveTurn(ctx, session, delta)
	s.pushTranscript(session.ID, delta)

	return &dto.SendChatResponse{
		SessionId:     session.ID,
		SelectedModel: session.SelectedModel,
		Messages:      toEntryDTOs(delta),
	}, nil
}

func (s *chatService) selectModel(session *store.Session, model string) {
	session.SelectedModel = model
	session.ClearPending()
	session.Diabetes.Reset()

	if model == store.ModelDiabetes {
		session.Append(store.SpeakerBot, constant.MsgDiabetesSelected)
		session.Append(store.SpeakerBot, constant.MsgDiabetesOption1)
		session.Append(store.SpeakerBot, constant.MsgDiabetesOption2)
		session.Diabetes.Step = store.StepAwaitingChoice
		return
	}
	session.Append(store.SpeakerBot, constant.MsgMovieSelected)
}

// Diabetes path

func (s *chatService) handleDiabetes(ctx context.Context, session *store.Session, input string, image []byte, imageName string) {
	switch session.Diabetes.Step {
	case store.StepAwaitingChoice:
		s.handleIntakeChoice(session, input)
	case store.StepAwaitingImage:
		s.handleEvidenceImage(ctx, session, image, imageName)
	case store.StepCollectingFields:
		s.handleFieldAnswer(ctx, session, input)
	default:
		// Dialogue finished or never started; re-offer the intake choice so
		// the session stays usable.
		session.Append(store.SpeakerBot, constant.MsgDiabetesSelected)
		session.Append(store.SpeakerBot, constant.MsgDiabetesOption1)
		session.Append(store.SpeakerBot, constant.MsgDiabetesOption2)
		session.Diabetes.Step = store.StepAwaitingChoice
	}
}

func (s *chatService) handleIntakeChoice(session *store.Session, input string) {
	switch textnorm.NormalizeDigits(input) {
	case "1":
		session.Append(store.SpeakerUser, constant.MsgChoiceUploadEcho)
		session.Append(store.SpeakerBot, constant.MsgAskForImage)
		session.Diabetes.Step = store.StepAwaitingImage
	case "2":
		session.Append(store.SpeakerUser, constant.MsgChoiceManualEcho)
		session.Append(store.SpeakerBot, constant.MsgManualIntro+risk.RequiredFields[0].Prompt)
		session.Diabetes.Step = store.StepCollectingFields
		session.Diabetes.Collected = nil
		session.Diabetes.FieldCursor = 0
	default:
		session.Append(store.SpeakerBot, constant.MsgInvalidChoice)
	}
}

func (s *chatService) handleEvidenceImage(ctx context.Context, session *store.Session, image []byte, imageName string) {
	if image == nil {
		session.Append(store.SpeakerBot, constant.MsgImageInvalid)
		return
	}
	session.Append(store.SpeakerUser, constant.MsgImageReceivedEcho)

	// Whatever the outcome, the image attempt consumes the sub-dialogue.
	session.Diabetes.Reset()

	text, err := s.extractor.Extract(ctx, image, imageName)
	if err != nil {
		s.logger.Error("ChatService", "OCR extraction failed", map[string]interface{}{"session_id": session.ID, "error": err.Error()})
		session.Append(store.SpeakerBot, fmt.Sprintf(constant.MsgImageProcessError, err))
		return
	}

	features, missing, err := risk.FromEvidence(text)
	if err != nil {
		session.Append(store.SpeakerBot, fmt.Sprintf(constant.MsgImageProcessError, err))
		return
	}
	if len(missing) > 0 {
		session.Append(store.SpeakerBot, fmt.Sprintf(constant.MsgImageMissingFieldsFa, strings.Join(missing, ", ")))
		return
	}

	result, err := s.predictor.Predict(ctx, features)
	if err != nil {
		s.logger.Error("ChatService", "risk prediction failed", map[string]interface{}{"session_id": session.ID, "error": err.Error()})
		session.Append(store.SpeakerBot, fmt.Sprintf(constant.MsgPredictionError, err))
		return
	}
	if result == 1 {
		session.Append(store.SpeakerBot, constant.MsgImagePositive)
	} else {
		session.Append(store.SpeakerBot, constant.MsgImageNegative)
	}
}

func (s *chatService) handleFieldAnswer(ctx context.Context, session *store.Session, input string) {
	cursor := session.Diabetes.CurrentFieldIndex()
	if cursor < 0 || cursor >= len(risk.RequiredFields) {
		session.Append(store.SpeakerBot, constant.MsgCollectingBroken)
		session.Diabetes.Reset()
		return
	}
	field := &risk.RequiredFields[cursor]

	if input != "" {
		session.Append(store.SpeakerUser, input)
	}

	value, err := risk.ParseValue(field, input)
	if err != nil {
		// Keep the cursor where it is; the next turn retries the same field.
		session.Append(store.SpeakerBot, constant.MsgInvalidNumber)
		return
	}

	session.Diabetes.Collected = append(session.Diabetes.Collected, store.CollectedField{
		Name:  field.Name,
		Value: value,
	})

	if cursor+1 < len(risk.RequiredFields) {
		session.Diabetes.FieldCursor = cursor + 1
		session.Append(store.SpeakerBot, risk.RequiredFields[cursor+1].Prompt)
		return
	}

	features := make(risk.Features, len(session.Diabetes.Collected))
	for _, cf := range session.Diabetes.Collected {
		features[cf.Name] = cf.Value
	}
	session.Diabetes.Reset()

	result, err := s.predictor.Predict(ctx, features)
	if err != nil {
		s.logger.Error("ChatService", "risk prediction failed", map[string]interface{}{"session_id": session.ID, "error": err.Error()})
		session.Append(store.SpeakerBot, fmt.Sprintf(constant.MsgPredictionError, err))
		return
	}
	if result == 1 {
		session.Append(store.SpeakerBot, constant.MsgManualPositive)
	} else {
		session.Append(store.SpeakerBot, constant.MsgManualNegative)
	}
}

// Movie path

func (s *chatService) handleMovie(ctx context.Context, session *store.Session, input string) {
	if input == "" {
		session.Append(store.SpeakerBot, constant.MsgMovieEmptyQuery)
		return
	}
	session.Append(store.SpeakerUser, input)

	if session.AwaitingDisambiguation() {
		choice, err := strconv.Atoi(textnorm.NormalizeDigits(input))
		if err != nil {
			// Not an ordinal; treat as a fresh query and drop the stale set.
			session.ClearPending()
			s.resolveAndRender(ctx, session, input)
			return
		}
		options := session.PendingOptions
		if choice < 1 || choice > len(options) {
			session.Append(store.SpeakerBot, constant.MsgMovieOutOfRange)
			return
		}
		title := options[choice-1]
		session.ClearPending()
		s.resolveAndRender(ctx, session, title)
		return
	}

	s.resolveAndRender(ctx, session, input)
}

func (s *chatService) resolveAndRender(ctx context.Context, session *store.Session, query string) {
	switch outcome := s.resolver.Resolve(ctx, query).(type) {
	case recommend.Direct:
		session.Append(store.SpeakerBot, constant.MsgMovieSuggestions)
		for i, title := range outcome.Titles {
			line := fmt.Sprintf("%d. %s", i+1, title)
			if i < len(outcome.Posters) && outcome.Posters[i] != "" {
				line = fmt.Sprintf("%d. %s — %s", i+1, title, outcome.Posters[i])
			}
			session.Append(store.SpeakerBot, line)
		}
	case recommend.Ambiguous:
		session.PendingOptions = outcome.Options
		session.PendingQuery = query
		session.Append(store.SpeakerBot, constant.MsgMovieWhichOne)
		for i, option := range outcome.Options {
			session.Append(store.SpeakerBot, fmt.Sprintf("%d. %s", i+1, option))
		}
		session.Append(store.SpeakerBot, constant.MsgMovieEnterNumber)
	case recommend.Empty:
		session.Append(store.SpeakerBot, constant.MsgMovieNotFound)
	case recommend.Failure:
		s.logger.Error("ChatService", "recommendation failed", map[string]interface{}{"session_id": session.ID, "query": query, "message": outcome.Message})
		session.Append(store.SpeakerBot, outcome.Message)
	default:
		session.Append(store.SpeakerBot, constant.MsgMovieGenericFailure)
	}
}

// History and archive

func (s *chatService) GetHistory(ctx context.Context, sessionId string) ([]*dto.GetChatHistoryResponse, error) {
	id, err := uuid.Parse(sessionId)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		res[i] = &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		}
	}
	return res, nil
}

// ClearHistory wipes the live transcript and dialogue state but keeps the
// selected model, and removes the archived copy of the conversation.
func (s *chatService) ClearHistory(ctx context.Context, sessionId string) error {
	if session, found := s.sessionRepo.Get(sessionId); found {
		session.Reset()
		s.sessionRepo.Save(session)
	}

	id, err := uuid.Parse(sessionId)
	if err != nil {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit()
}

// Recommend serves the stateless endpoint: no session, raw outcome mapped to
// the legacy status envelope.
func (s *chatService) Recommend(ctx context.Context, query string) *dto.RecommendResponse {
	if strings.TrimSpace(query) == "" {
		return &dto.RecommendResponse{Status: "error", Message: constant.MsgMovieEmptyQuery}
	}
	switch outcome := s.resolver.Resolve(ctx, query).(type) {
	case recommend.Direct:
		return &dto.RecommendResponse{
			Status:  "success",
			Titles:  outcome.Titles,
			Posters: outcome.Posters,
			Message: fmt.Sprintf("نتایج پیشنهادی برای '%s':", query),
		}
	case recommend.Ambiguous:
		return &dto.RecommendResponse{
			Status:  "need_confirmation",
			Options: outcome.Options,
			Message: constant.MsgMovieWhichOne,
		}
	case recommend.Failure:
		return &dto.RecommendResponse{Status: "error", Message: outcome.Message}
	default:
		return &dto.RecommendResponse{Status: "error", Message: constant.MsgMovieNotFound}
	}
}

func (s *chatService) archiveTurn(ctx context.Context, session *store.Session, delta []store.Entry) {
	if s.publisher == nil || len(delta) == 0 {
		return
	}

	state, err := json.Marshal(session.Diabetes)
	if err != nil {
		state = nil
	}

	payload := dto.PublishArchiveTurnMessage{
		SessionId:     session.ID,
		Title:         sessionTitle(session),
		SelectedModel: session.SelectedModel,
		State:         state,
		Messages:      toEntryDTOs(delta),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("ChatService", "failed to marshal archive payload", map[string]interface{}{"session_id": session.ID, "error": err.Error()})
		return
	}
	if err := s.publisher.Publish(ctx, raw); err != nil {
		s.logger.Warn("ChatService", "failed to publish archive payload", map[string]interface{}{"session_id": session.ID, "error": err.Error()})
	}
}

func (s *chatService) pushTranscript(sessionId string, delta []store.Entry) {
	if s.hub == nil || len(delta) == 0 {
		return
	}
	id, err := uuid.Parse(sessionId)
	if err != nil {
		return
	}
	s.hub.Send(id, toEntryDTOs(delta))
}

func toEntryDTOs(entries []store.Entry) []dto.ChatEntryDTO {
	res := make([]dto.ChatEntryDTO, len(entries))
	for i, e := range entries {
		res[i] = dto.ChatEntryDTO{Role: e.Speaker, Chat: e.Text}
	}
	return res
}

func sessionTitle(session *store.Session) string {
	for _, e := range session.Transcript {
		if e.Speaker == store.SpeakerUser {
			return e.Text
		}
	}
	if session.SelectedModel != store.ModelNone {
		return session.SelectedModel
	}
	return "new session"
}

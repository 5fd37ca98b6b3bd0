package service

import (
	"context"
	"fmt"
	"testing"

	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/pkg/recommend"
	"ai-chatbot-be/pkg/risk"
	"ai-chatbot-be/pkg/store"
	"ai-chatbot-be/pkg/translate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakePredictor struct {
	result   int
	err      error
	calls    int
	features risk.Features
}

func (p *fakePredictor) Predict(ctx context.Context, features risk.Features) (int, error) {
	p.calls++
	p.features = features
	return p.result, p.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) Extract(ctx context.Context, image []byte, filename string) (string, error) {
	return e.text, e.err
}

type stubPoster struct{}

func (stubPoster) Fetch(ctx context.Context, movieID int) string { return "" }

func testResolver(t *testing.T) *recommend.Resolver {
	t.Helper()
	catalog, err := recommend.NewCatalog(
		[]recommend.Movie{
			{ID: 1, Title: "The Dark Knight", Tags: "action crime drama"},
			{ID: 2, Title: "The Dark Knight Rises", Tags: "action thriller"},
			{ID: 3, Title: "Interstellar", Tags: "adventure drama sci-fi"},
		},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.3},
			{0.2, 0.3, 1.0},
		},
	)
	require.NoError(t, err)
	return recommend.NewResolver(catalog, translate.Noop{}, stubPoster{}, nil)
}

type fixture struct {
	service   IChatService
	repo      *memory.SessionRepository
	predictor *fakePredictor
	extractor *fakeExtractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewSessionRepository()
	predictor := &fakePredictor{}
	extractor := &fakeExtractor{}
	svc := NewChatService(repo, nil, predictor, testResolver(t), extractor, nil, nil, nopLogger{})
	return &fixture{service: svc, repo: repo, predictor: predictor, extractor: extractor}
}

func (f *fixture) turn(t *testing.T, req *dto.SendChatRequest) *dto.SendChatResponse {
	t.Helper()
	res, err := f.service.SendChat(context.Background(), req, nil, "")
	require.NoError(t, err)
	return res
}

func botTexts(messages []dto.ChatEntryDTO) []string {
	var texts []string
	for _, m := range messages {
		if m.Role == store.SpeakerBot {
			texts = append(texts, m.Chat)
		}
	}
	return texts
}

func TestFreshSessionGetsGreeting(t *testing.T) {
	f := newFixture(t)

	res := f.turn(t, &dto.SendChatRequest{Message: "سلام"})

	require.NotEmpty(t, res.SessionId)
	assert.Equal(t, []dto.ChatEntryDTO{
		{Role: store.SpeakerUser, Chat: "سلام"},
		{Role: store.SpeakerBot, Chat: constant.MsgGreeting},
	}, res.Messages)

	session, found := f.repo.Get(res.SessionId)
	require.True(t, found)
	assert.Equal(t, constant.MsgGreeting, session.Transcript[0].Text)
}

func TestModelSelectionDiabetes(t *testing.T) {
	f := newFixture(t)

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})

	assert.Equal(t, "diabetes", res.SelectedModel)
	bots := botTexts(res.Messages)
	assert.Contains(t, bots, constant.MsgDiabetesSelected)
	assert.Contains(t, bots, constant.MsgDiabetesOption1)
	assert.Contains(t, bots, constant.MsgDiabetesOption2)

	session, found := f.repo.Get("sess-1")
	require.True(t, found)
	assert.Equal(t, store.StepAwaitingChoice, session.Diabetes.Step)
}

func TestInvalidChoiceReprompts(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "9"})
	assert.Equal(t, []string{constant.MsgInvalidChoice}, botTexts(res.Messages))

	// The same reprompt twice in a row is dropped by transcript dedup.
	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "9"})
	assert.Empty(t, res.Messages)

	session, _ := f.repo.Get("sess-1")
	assert.Equal(t, store.StepAwaitingChoice, session.Diabetes.Step)
}

func TestManualCollectionFlow(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})

	// Persian digit choice is normalized before matching.
	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "۲"})
	bots := botTexts(res.Messages)
	require.Len(t, bots, 1)
	assert.Contains(t, bots[0], risk.RequiredFields[0].Prompt)

	answers := []string{"0", "95", "70", "22", "79", "27.1", "0.351"}
	for i, answer := range answers {
		res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: answer})
		bots = botTexts(res.Messages)
		require.Len(t, bots, 1, "answer %d should yield exactly one prompt", i)
		assert.Equal(t, risk.RequiredFields[i+1].Prompt, bots[0])
		assert.Zero(t, f.predictor.calls)
	}

	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "31"})

	assert.Equal(t, 1, f.predictor.calls, "prediction fires exactly once, after the final answer")
	assert.Equal(t, []float64{0, 95, 70, 22, 79, 27.1, 0.351, 31}, f.predictor.features.Vector())
	assert.Equal(t, []string{constant.MsgManualNegative}, botTexts(res.Messages))

	session, _ := f.repo.Get("sess-1")
	assert.Equal(t, store.StepNone, session.Diabetes.Step)
	assert.Empty(t, session.Diabetes.Collected)
}

func TestInvalidNumberKeepsCursor(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "2"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "abc"})
	assert.Equal(t, []string{constant.MsgInvalidNumber}, botTexts(res.Messages))

	session, _ := f.repo.Get("sess-1")
	assert.Equal(t, 0, session.Diabetes.CurrentFieldIndex(), "a rejected answer must not advance the sequence")

	// Integer fields reject fractional answers outright.
	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "2.5"})
	assert.Equal(t, []string{constant.MsgInvalidNumber}, botTexts(res.Messages))

	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "3"})
	assert.Equal(t, []string{risk.RequiredFields[1].Prompt}, botTexts(res.Messages))
}

func TestImageFlowPredicts(t *testing.T) {
	f := newFixture(t)
	f.predictor.result = 1
	f.extractor.text = "pregnancies: 2 glucose: 120 bp: 70 skin thickness: 20 insulin: 85 bmi: 28.5 diabetes pedigree: 0.5 age: 33"

	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})
	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "1"})
	assert.Contains(t, botTexts(res.Messages), constant.MsgAskForImage)

	res, err := f.service.SendChat(context.Background(), &dto.SendChatRequest{SessionId: "sess-1"}, []byte("fake-image"), "report.png")
	require.NoError(t, err)

	assert.Equal(t, 1, f.predictor.calls)
	assert.Equal(t, []float64{2, 120, 70, 20, 85, 28.5, 0.5, 33}, f.predictor.features.Vector())
	assert.Equal(t, []string{constant.MsgImagePositive}, botTexts(res.Messages))

	session, _ := f.repo.Get("sess-1")
	assert.Equal(t, store.StepNone, session.Diabetes.Step)
}

func TestImageMissingFieldsReported(t *testing.T) {
	f := newFixture(t)
	f.extractor.text = "glucose: 120 bmi: 28.5"

	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "1"})

	res, err := f.service.SendChat(context.Background(), &dto.SendChatRequest{SessionId: "sess-1"}, []byte("fake-image"), "report.png")
	require.NoError(t, err)

	assert.Zero(t, f.predictor.calls)
	bots := botTexts(res.Messages)
	require.Len(t, bots, 1)
	assert.Contains(t, bots[0], "Pregnancies")
	assert.Contains(t, bots[0], "Insulin")
	assert.NotContains(t, bots[0], "BMI")
}

func TestMovieDisambiguation(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "dark knight"})
	bots := botTexts(res.Messages)
	assert.Equal(t, []string{
		constant.MsgMovieWhichOne,
		"1. The Dark Knight",
		"2. The Dark Knight Rises",
		constant.MsgMovieEnterNumber,
	}, bots)

	session, _ := f.repo.Get("sess-1")
	require.True(t, session.AwaitingDisambiguation())

	// Out of range ordinal keeps the options pending.
	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "7"})
	assert.Equal(t, []string{constant.MsgMovieOutOfRange}, botTexts(res.Messages))
	session, _ = f.repo.Get("sess-1")
	assert.True(t, session.AwaitingDisambiguation())

	// Persian ordinal resolves the first option.
	res = f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "۱"})
	bots = botTexts(res.Messages)
	assert.Equal(t, []string{
		constant.MsgMovieSuggestions,
		"1. The Dark Knight Rises",
		"2. Interstellar",
	}, bots)

	session, _ = f.repo.Get("sess-1")
	assert.False(t, session.AwaitingDisambiguation())
}

func TestMovieFreshQueryDropsPendingOptions(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "dark knight"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "interstellar"})
	bots := botTexts(res.Messages)
	require.NotEmpty(t, bots)
	assert.Equal(t, constant.MsgMovieSuggestions, bots[0])

	session, _ := f.repo.Get("sess-1")
	assert.False(t, session.AwaitingDisambiguation())
}

func TestMovieEmptyQueryPrompts(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "   "})
	assert.Equal(t, []string{constant.MsgMovieEmptyQuery}, botTexts(res.Messages))
}

func TestMovieNoMatch(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "zzzzqqqq"})
	assert.Equal(t, []string{constant.MsgMovieNotFound}, botTexts(res.Messages))
}

func TestClearHistoryKeepsSelectedModel(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "interstellar"})

	require.NoError(t, f.service.ClearHistory(context.Background(), "sess-1"))

	session, found := f.repo.Get("sess-1")
	require.True(t, found)
	assert.Empty(t, session.Transcript)
	assert.Equal(t, store.ModelMovie, session.SelectedModel)
}

func TestRecommendEndpointEnvelope(t *testing.T) {
	f := newFixture(t)

	res := f.service.Recommend(context.Background(), "interstellar")
	assert.Equal(t, "success", res.Status)
	assert.NotEmpty(t, res.Titles)

	res = f.service.Recommend(context.Background(), "dark knight")
	assert.Equal(t, "need_confirmation", res.Status)
	assert.Len(t, res.Options, 2)

	res = f.service.Recommend(context.Background(), "zzzzqqqq")
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, constant.MsgMovieNotFound, res.Message)

	res = f.service.Recommend(context.Background(), "  ")
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, constant.MsgMovieEmptyQuery, res.Message)
}

func TestModelSwitchResetsDialogueState(t *testing.T) {
	f := newFixture(t)
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "movie"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "dark knight"})

	res := f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})
	assert.Equal(t, "diabetes", res.SelectedModel)

	session, _ := f.repo.Get("sess-1")
	assert.False(t, session.AwaitingDisambiguation())
	assert.Equal(t, store.StepAwaitingChoice, session.Diabetes.Step)
}

func TestPredictionErrorSurfacesMessage(t *testing.T) {
	f := newFixture(t)
	f.predictor.err = fmt.Errorf("predictor unreachable")
	f.extractor.text = "pregnancies: 2 glucose: 120 bp: 70 skin thickness: 20 insulin: 85 bmi: 28.5 diabetes pedigree: 0.5 age: 33"

	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Model: "diabetes"})
	f.turn(t, &dto.SendChatRequest{SessionId: "sess-1", Message: "1"})

	res, err := f.service.SendChat(context.Background(), &dto.SendChatRequest{SessionId: "sess-1"}, []byte("fake-image"), "report.png")
	require.NoError(t, err)

	bots := botTexts(res.Messages)
	require.Len(t, bots, 1)
	assert.Contains(t, bots[0], "predictor unreachable")
}

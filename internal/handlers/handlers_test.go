package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/observability"
	"github.com/hanashi-app/backend/internal/services"
	"github.com/hanashi-app/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubQuizService struct {
	randomQuiz func(ctx context.Context) (*types.Quiz, error)
	byStory    func(ctx context.Context, storyID string) ([]*types.Quiz, error)
	submit     func(ctx context.Context, input services.SubmitAnswerInput) (*types.QuizFeedback, error)
}

func (s *stubQuizService) GetRandomQuiz(ctx context.Context) (*types.Quiz, error) {
	return s.randomQuiz(ctx)
}

func (s *stubQuizService) GetQuizzesByStoryID(ctx context.Context, storyID string) ([]*types.Quiz, error) {
	return s.byStory(ctx, storyID)
}

func (s *stubQuizService) SubmitQuizAnswer(ctx context.Context, input services.SubmitAnswerInput) (*types.QuizFeedback, error) {
	return s.submit(ctx, input)
}

type stubProgressService struct {
	progress func(ctx context.Context) (*types.LearningProgress, error)
	graph    func(ctx context.Context, period string) (*types.ProgressGraphData, error)
	reset    func(ctx context.Context) (int64, error)
}

func (s *stubProgressService) GetLearningProgress(ctx context.Context) (*types.LearningProgress, error) {
	return s.progress(ctx)
}

func (s *stubProgressService) GetProgressGraphData(ctx context.Context, period string) (*types.ProgressGraphData, error) {
	return s.graph(ctx, period)
}

func (s *stubProgressService) ResetResults(ctx context.Context) (int64, error) {
	return s.reset(ctx)
}

type stubTTSService struct {
	synthesize func(ctx context.Context, text string) (string, error)
}

func (s *stubTTSService) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return s.synthesize(ctx, text)
}

type stubStoryGenService struct {
	generate func(ctx context.Context, input services.GenerateStoryInput) (*types.Story, error)
}

func (s *stubStoryGenService) GenerateStory(ctx context.Context, input services.GenerateStoryInput) (*types.Story, error) {
	return s.generate(ctx, input)
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmitQuizAnswer(t *testing.T) {
	var got services.SubmitAnswerInput
	svc := &stubQuizService{
		submit: func(_ context.Context, input services.SubmitAnswerInput) (*types.QuizFeedback, error) {
			got = input
			return &types.QuizFeedback{IsCorrect: true, Explanation: "正解です。"}, nil
		},
	}
	h := NewQuizHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.POST("/api/quizzes/answer", h.SubmitQuizAnswer)

	quizID := uuid.NewString()
	answerID := uuid.NewString()
	w := perform(r, http.MethodPost, "/api/quizzes/answer",
		`{"quiz_id":"`+quizID+`","user_answer":"`+answerID+`","response_method":"テキスト"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, quizID, got.QuizID)
	require.Equal(t, answerID, got.UserAnswer)
	require.Equal(t, types.ResponseMethodText, got.ResponseMethod)

	resp := decodeEnvelope(t, w)
	require.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	require.Equal(t, true, data["is_correct"])
	require.Equal(t, "正解です。", data["explanation"])
	require.NotContains(t, data, "sample_answer")
}

func TestSubmitQuizAnswer_BindFailure(t *testing.T) {
	svc := &stubQuizService{
		submit: func(_ context.Context, _ services.SubmitAnswerInput) (*types.QuizFeedback, error) {
			t.Fatal("service should not be reached on a bind failure")
			return nil, nil
		},
	}
	h := NewQuizHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.POST("/api/quizzes/answer", h.SubmitQuizAnswer)

	for _, body := range []string{"", "not-json", `{"quiz_id":"abc"}`} {
		w := perform(r, http.MethodPost, "/api/quizzes/answer", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeEnvelope(t, w)
		require.Equal(t, false, resp["success"])
		require.Equal(t, "quiz_id, user_answer, and response_method are required", resp["message"])
	}
}

func TestGetQuizzesByStoryID_IncludesCount(t *testing.T) {
	svc := &stubQuizService{
		byStory: func(_ context.Context, storyID string) ([]*types.Quiz, error) {
			return []*types.Quiz{{QuestionText: "q1"}, {QuestionText: "q2"}}, nil
		},
	}
	h := NewQuizHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.GET("/api/quizzes/story/:storyId", h.GetQuizzesByStoryID)

	w := perform(r, http.MethodGet, "/api/quizzes/story/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	require.Equal(t, float64(2), data["count"])
	require.Len(t, data["quizzes"], 2)
}

func TestGetRandomQuiz_NotFoundEnvelope(t *testing.T) {
	svc := &stubQuizService{
		randomQuiz: func(_ context.Context) (*types.Quiz, error) {
			return nil, apierr.NotFound("no quizzes available")
		},
	}
	h := NewQuizHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.GET("/api/quizzes", h.GetRandomQuiz)

	w := perform(r, http.MethodGet, "/api/quizzes", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeEnvelope(t, w)
	require.Equal(t, false, resp["success"])
	require.Equal(t, "Not Found", resp["error"])
	require.Equal(t, "no quizzes available", resp["message"])
	require.NotContains(t, resp, "data")
}

func TestRespondError_ElidesInternalDetailInRelease(t *testing.T) {
	svc := &stubQuizService{
		randomQuiz: func(_ context.Context) (*types.Quiz, error) {
			return nil, apierr.Internal(context.DeadlineExceeded)
		},
	}
	h := NewQuizHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.GET("/api/quizzes", h.GetRandomQuiz)

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	w := perform(r, http.MethodGet, "/api/quizzes", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeEnvelope(t, w)
	require.Equal(t, "an unexpected error occurred", resp["message"])
}

func TestGetProgressGraph_IncludesPeriod(t *testing.T) {
	var gotPeriod string
	svc := &stubProgressService{
		graph: func(_ context.Context, period string) (*types.ProgressGraphData, error) {
			gotPeriod = period
			return &types.ProgressGraphData{
				DataPoints: []types.ProgressDataPoint{},
				Levels:     types.JLPTLevels,
			}, nil
		},
	}
	h := NewProgressHandler(logger.NewNop(), svc)
	r := gin.New()
	r.GET("/api/progress/graph", h.GetProgressGraph)

	w := perform(r, http.MethodGet, "/api/progress/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "week", gotPeriod)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	require.Equal(t, "week", data["period"])
	require.Len(t, data["levels"], 5)

	w = perform(r, http.MethodGet, "/api/progress/graph?period=year", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "year", gotPeriod)
}

func TestSynthesizeSpeech(t *testing.T) {
	svc := &stubTTSService{
		synthesize: func(_ context.Context, text string) (string, error) {
			require.Equal(t, "こんにちは", text)
			return "data:audio/mp3;base64,bXAz", nil
		},
	}
	h := NewTTSHandler(logger.NewNop(), svc, observability.New())
	r := gin.New()
	r.POST("/api/tts/synthesize", h.SynthesizeSpeech)

	w := perform(r, http.MethodPost, "/api/tts/synthesize", `{"text":"こんにちは"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	require.Equal(t, "data:audio/mp3;base64,bXAz", data["audioUrl"])

	w = perform(r, http.MethodPost, "/api/tts/synthesize", "not-json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "text is required", decodeEnvelope(t, w)["message"])
}

func TestGenerateStory(t *testing.T) {
	svc := &stubStoryGenService{
		generate: func(_ context.Context, input services.GenerateStoryInput) (*types.Story, error) {
			require.Equal(t, types.LevelN4, input.Level)
			return &types.Story{
				ID:        uuid.New(),
				Title:     "雨の日の選択",
				LevelJLPT: input.Level,
				LevelCEFR: types.CEFRForJLPT[input.Level],
			}, nil
		},
	}
	progress := &stubProgressService{}
	h := NewAdminHandler(logger.NewNop(), svc, progress, observability.New())
	r := gin.New()
	r.POST("/api/admin/stories/generate", h.GenerateStory)

	w := perform(r, http.MethodPost, "/api/admin/stories/generate", `{"level":"N4","theme":"雨の日"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	require.Equal(t, "雨の日の選択", data["title"])

	w = perform(r, http.MethodPost, "/api/admin/stories/generate", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "level and theme are required", decodeEnvelope(t, w)["message"])
}

func TestResetResults(t *testing.T) {
	progress := &stubProgressService{
		reset: func(_ context.Context) (int64, error) { return 7, nil },
	}
	h := NewAdminHandler(logger.NewNop(), nil, progress, observability.New())
	r := gin.New()
	r.POST("/api/admin/reset-results", h.ResetResults)

	w := perform(r, http.MethodPost, "/api/admin/reset-results", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	require.Equal(t, float64(7), data["deleted"])
}

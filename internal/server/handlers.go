package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/abhisek/quizladder/internal/performance"
	"github.com/abhisek/quizladder/internal/questions"
)

// demoFeatureValue fills the vector /simulate uses when none is posted.
const demoFeatureValue = 0.2

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", fault.ErrInvalidInput, err)
	}
	return nil
}

type healthResponse struct {
	Status     string `json:"status"`
	Classifier bool   `json:"classifier"`
	Policy     bool   `json:"policy"`
	Questions  int    `json:"questions"`
	LLMTips    bool   `json:"llm_tips"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.deps.Controller.Models()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Classifier: m.Classifier != nil,
		Policy:     m.Policy != nil,
		Questions:  s.deps.Bank.Len(),
		LLMTips:    s.deps.Tips.Generates(),
	})
}

// questionView is a question without its answer.
type questionView struct {
	ID         string           `json:"id"`
	Question   string           `json:"question"`
	Options    []string         `json:"options,omitempty"`
	Difficulty difficulty.Level `json:"difficulty"`
	Language   string           `json:"language"`
}

func viewOf(q questions.Question) questionView {
	return questionView{
		ID:         q.ID,
		Question:   q.Question,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Language:   q.Language,
	}
}

// questionFilter reads ?language= and ?difficulty=.
func questionFilter(r *http.Request) (string, difficulty.Level, error) {
	lang := r.URL.Query().Get("language")
	if lang != "" && !questions.SupportedLanguage(lang) {
		return "", "", fault.Invalid("unsupported language %q", lang)
	}
	var level difficulty.Level
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		parsed, err := difficulty.Parse(raw)
		if err != nil {
			return "", "", err
		}
		level = parsed
	}
	return lang, level, nil
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	lang, level, err := questionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	qs := s.deps.Bank.Filter(lang, level)
	out := make([]questionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, viewOf(q))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRandomQuestion(w http.ResponseWriter, r *http.Request) {
	lang, level, err := questionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if lang == "" {
		lang = questions.DefaultLanguage
	}
	if level == "" {
		level = difficulty.Easy
	}
	q, err := s.deps.Bank.Pick(nil, lang, level)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(q))
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	// Difficulty is the learner's current level; empty uses the
	// question's own level.
	Difficulty  difficulty.Level     `json:"difficulty,omitempty"`
	Performance performance.Snapshot `json:"performance"`
	ResponseMs  int64                `json:"response_ms,omitempty"`
	SessionID   string               `json:"session_id,omitempty"`
	Advisory    *bool                `json:"advisory,omitempty"`
	Act         string               `json:"act,omitempty"`
	Features    []float64            `json:"features,omitempty"`
}

type answerResponse struct {
	Result         string               `json:"result"`
	CorrectAnswer  string               `json:"correct_answer"`
	Tip            string               `json:"tip"`
	TipSource      string               `json:"tip_source"`
	Accuracy       string               `json:"accuracy"`
	Suggestion     string               `json:"suggestion"`
	NextDifficulty difficulty.Level     `json:"next_difficulty"`
	Source         engine.Source        `json:"source"`
	Performance    performance.Snapshot `json:"performance"`
	Advisory       *engine.Advisory     `json:"advisory,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, ok := s.deps.Bank.Get(req.QuestionID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("question %q not found", req.QuestionID))
		return
	}

	level := req.Difficulty
	if level == "" {
		level = q.Difficulty
	}
	act := s.opts.Act
	if req.Act != "" {
		act = engine.Source(req.Act)
	}
	advisory := s.opts.Advisory
	if req.Advisory != nil {
		advisory = *req.Advisory
	}

	correct := questions.CheckAnswer(q, req.Answer)
	res, err := s.deps.Controller.Decide(engine.DecisionRequest{
		Level:        level,
		Correct:      correct,
		Snapshot:     req.Performance,
		ResponseTime: time.Duration(req.ResponseMs) * time.Millisecond,
		Advisory:     advisory,
		Features:     req.Features,
		Act:          act,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fault.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	tip := s.deps.Tips.For(r.Context(), q, req.Answer, correct)
	s.recordDecision(r, req, q, level, res)

	result := "incorrect"
	if correct {
		result = "correct"
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Result:         result,
		CorrectAnswer:  q.Answer,
		Tip:            tip.Text,
		TipSource:      string(tip.Source),
		Accuracy:       res.AccuracyText,
		Suggestion:     res.Suggestion.Text,
		NextDifficulty: res.NextLevel,
		Source:         res.Source,
		Performance:    res.Snapshot,
		Advisory:       res.Advisory,
	})
}

func (s *Server) recordDecision(r *http.Request, req answerRequest, q questions.Question, level difficulty.Level, res engine.DecisionResult) {
	if s.deps.Events == nil {
		return
	}
	data := res.EventData(req.SessionID, q.ID, level, req.ResponseMs)
	if err := s.deps.Events.AppendDecision(r.Context(), data); err != nil {
		s.log.Warn("failed to record decision", "question", q.ID, "error", err)
	}
}

type simulateRequest struct {
	Features []float64 `json:"features"`
}

type simulateResponse struct {
	PredictedDifficulty *string            `json:"predicted_difficulty"`
	PredictedLevel      *difficulty.Level  `json:"predicted_level,omitempty"`
	RLSuggestion        *difficulty.Action `json:"rl_suggestion"`
	HeuristicOnly       bool               `json:"heuristic_only"`
	Reasons             []string           `json:"reasons,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Features == nil {
		req.Features = features.Uniform(demoFeatureValue).Slice()
	}

	sim := s.deps.Controller.Simulate(req.Features)
	resp := simulateResponse{
		RLSuggestion:  sim.PolicyAction,
		HeuristicOnly: sim.HeuristicOnly,
		Reasons:       sim.Reasons,
	}
	if sim.ClassifierScore != nil {
		text := fmt.Sprintf("%.2f", *sim.ClassifierScore)
		level := engine.LevelForScore(*sim.ClassifierScore)
		resp.PredictedDifficulty = &text
		resp.PredictedLevel = &level
	}
	writeJSON(w, http.StatusOK, resp)
}

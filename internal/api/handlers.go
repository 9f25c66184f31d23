package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	"github.com/abhisek/smartstudy/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type setSummary struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Active        bool                   `json:"active"`
	Source        deck.Source            `json:"source"`
	CreatedAt     time.Time              `json:"created_at"`
	QuestionCount int                    `json:"question_count"`
	Mastery       [deck.LadderLength]int `json:"mastery"`
}

type questionView struct {
	ID                  string                   `json:"id"`
	Prompt              string                   `json:"question"`
	Options             [deck.OptionCount]string `json:"options"`
	CorrectIndex        int                      `json:"correct_index"`
	Subject             string                   `json:"subject,omitempty"`
	Explanation         string                   `json:"explanation,omitempty"`
	IntervalIndex       int                      `json:"interval_index"`
	Mastery             string                   `json:"mastery"`
	NextDueSession      int                      `json:"next_due_session"`
	LastReviewedSession *int                     `json:"last_reviewed_session"`
	TimesCorrect        int                      `json:"times_correct"`
	TimesIncorrect      int                      `json:"times_incorrect"`
}

type setDetail struct {
	setSummary
	Questions []questionView `json:"questions"`
}

type dueResponse struct {
	Session     int            `json:"session"`
	Due         []questionView `json:"due"`
	NextSession *int           `json:"next_session,omitempty"`
}

func summarize(s deck.Set) setSummary {
	return setSummary{
		ID:            s.ID,
		Name:          s.Name,
		Active:        s.Active,
		Source:        s.Source,
		CreatedAt:     s.CreatedAt.UTC(),
		QuestionCount: len(s.Questions),
		Mastery:       deck.MasteryDistribution(s.Questions),
	}
}

func viewQuestion(q deck.Question) questionView {
	return questionView{
		ID:                  q.ID,
		Prompt:              q.Prompt,
		Options:             q.Options,
		CorrectIndex:        q.CorrectIndex,
		Subject:             q.Subject,
		Explanation:         q.Explanation,
		IntervalIndex:       q.IntervalIndex,
		Mastery:             deck.MasteryLabel(q.IntervalIndex),
		NextDueSession:      q.NextDueSession,
		LastReviewedSession: q.LastReviewedSession,
		TimesCorrect:        q.TimesCorrect,
		TimesIncorrect:      q.TimesIncorrect,
	}
}

func viewQuestions(qs []deck.Question) []questionView {
	out := make([]questionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, viewQuestion(q))
	}
	return out
}

// GET /api/health
func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/sets
func (s *Server) listSets(c echo.Context) error {
	sets, _, err := s.library.LoadSets(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]setSummary, 0, len(sets))
	for _, set := range sets {
		out = append(out, summarize(set))
	}
	return c.JSON(http.StatusOK, out)
}

// GET /api/sets/:id
func (s *Server) getSet(c echo.Context) error {
	sets, _, err := s.library.LoadSets(c.Request().Context())
	if err != nil {
		return err
	}
	i := deck.FindSet(sets, c.Param("id"))
	if i < 0 {
		return echo.NewHTTPError(http.StatusNotFound, "set not found")
	}
	return c.JSON(http.StatusOK, setDetail{
		setSummary: summarize(sets[i]),
		Questions:  viewQuestions(sets[i].Questions),
	})
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// PUT /api/sets/:id/active
func (s *Server) setActive(c echo.Context) error {
	var req activeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, `body must be {"active": true|false}`)
	}
	id := c.Param("id")
	if err := s.library.SetActive(c.Request().Context(), id, *req.Active); err != nil {
		if errors.Is(err, store.ErrSetNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "set not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "active": *req.Active})
}

// GET /api/due?session=N
func (s *Server) due(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := s.library.LoadCurrentSession(ctx)
	if err != nil {
		return err
	}
	if raw := c.QueryParam("session"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "session must be a positive integer")
		}
		session = n
	}
	sets, _, err := s.library.LoadSets(ctx)
	if err != nil {
		return err
	}
	pool := deck.ActivePool(sets)
	resp := dueResponse{Session: session, Due: viewQuestions(spacedrep.SelectDue(pool, session))}
	if len(resp.Due) == 0 {
		if next, ok := spacedrep.NextFutureSession(pool, session); ok {
			resp.NextSession = &next
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type statsResponse struct {
	Day            string         `json:"day"`
	Level          int            `json:"level"`
	TotalXP        int            `json:"total_xp"`
	XPInLevel      int            `json:"xp_in_level"`
	XPForNext      int            `json:"xp_for_next"`
	CurrentStreak  int            `json:"current_streak"`
	LongestStreak  int            `json:"longest_streak"`
	StreakAlive    bool           `json:"streak_alive"`
	Sessions       int            `json:"sessions_completed"`
	Perfect        int            `json:"perfect_sessions"`
	TotalQuestions int            `json:"total_questions"`
	ActiveSets     int            `json:"active_sets"`
	Mastery        map[string]int `json:"mastery"`
	Quests         []questView    `json:"quests"`
	Achievements   []badgeView    `json:"achievements"`
}

type questView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Current int    `json:"current"`
	Goal    int    `json:"goal"`
	XP      int    `json:"xp"`
	Claimed bool   `json:"claimed"`
}

type badgeView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
}

// GET /api/stats
func (s *Server) stats(c echo.Context) error {
	if s.progress == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "stats unavailable")
	}
	ctx := c.Request().Context()
	sets, _, err := s.library.LoadSets(ctx)
	if err != nil {
		return err
	}
	ov, err := s.progress.Overview(ctx, sets)
	if err != nil {
		return err
	}
	resp := statsResponse{
		Day:            ov.Day,
		Level:          ov.Level.Level,
		TotalXP:        ov.Level.TotalXP,
		XPInLevel:      ov.Level.XPInLevel,
		XPForNext:      ov.Level.XPForNext,
		CurrentStreak:  ov.Stats.CurrentStreak,
		LongestStreak:  ov.Stats.LongestStreak,
		StreakAlive:    ov.StreakAlive,
		Sessions:       ov.Stats.SessionsCompleted,
		Perfect:        ov.Stats.PerfectSessions,
		TotalQuestions: ov.TotalQuestions,
		ActiveSets:     ov.ActiveSets,
		Mastery:        make(map[string]int, deck.LadderLength),
	}
	for i, label := range deck.MasteryLabels() {
		resp.Mastery[label] = ov.Mastery[i]
	}
	for _, q := range ov.Quests {
		resp.Quests = append(resp.Quests, questView{ID: q.ID, Name: q.Name, Current: q.Current, Goal: q.Goal, XP: q.XP, Claimed: q.Claimed})
	}
	for _, a := range ov.Achievements {
		resp.Achievements = append(resp.Achievements, badgeView{ID: a.ID, Name: a.Name, Unlocked: a.Unlocked})
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /api/export
func (s *Server) export(c echo.Context) error {
	ctx := c.Request().Context()
	sets, _, err := s.library.LoadSets(ctx)
	if err != nil {
		return err
	}
	session, err := s.library.LoadCurrentSession(ctx)
	if err != nil {
		return err
	}
	name := "smartstudy-" + s.now().Format("20060102") + ".json"
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return deck.EncodeDocument(c.Response(), deck.Library{CurrentSession: session, Sets: sets})
}

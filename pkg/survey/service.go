package survey

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pollcard/pkg/cache"
	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/observability"
	"github.com/matzehuels/pollcard/pkg/render/card"
)

// Config is the survey content that is data rather than code.
type Config struct {
	// OptionTexts are the answer texts of Option1 through Option5.
	OptionTexts [5]string `toml:"option_texts"`
	// Labels are the qualitative gauge captions, see card.QualitativeLabel.
	Labels []card.PercentLabel `toml:"labels"`
	// GuardTTL bounds how long a duplicate-response claim lives in the
	// guard. It should outlast the question's lifetime.
	GuardTTL time.Duration `toml:"guard_ttl"`
	// Extras configures each follow-up question, keyed by name.
	Extras map[ExtraQuestion]ExtraConfig `toml:"extras"`
}

// DefaultConfig returns the stock answer texts and captions.
func DefaultConfig() Config {
	return Config{
		OptionTexts: [5]string{
			"Никак не повлияла",
			"Вызвала кратковременный стресс, но жизнь продолжается без изменений",
			"Вызвала волнение, тревогу и неуверенность, но пока все под контролем",
			"Выбила из колеи, высокий уровень стресса и беспокойства",
			"Полностью лишила душевного равновесия. Ощущение страха и потери веры в будущее",
		},
		Labels: []card.PercentLabel{
			{Text: "Спокойствие", UpTo: 20},
			{Text: "Лёгкое беспокойство", UpTo: 40},
			{Text: "Тревога", UpTo: 60},
			{Text: "Сильный стресс", UpTo: 80},
			{Text: "Паника", UpTo: 100},
		},
		GuardTTL: 8 * 24 * time.Hour,
		Extras: map[ExtraQuestion]ExtraConfig{
			AreYouInRussia: {
				ValidityWeeks: 4,
				Options:       []string{"Да", "Нет", "Не хочу отвечать"},
			},
			HowOldAreYou: {
				ValidityWeeks: 52,
				Options:       []string{"до 18", "18-24", "25-34", "35-44", "45-54", "55 и старше", "Не хочу отвечать"},
			},
		},
	}
}

// Service implements response collection and result aggregation on top of
// a Store. A Guard, when set, rejects duplicate responses before they reach
// the store; the store's own uniqueness check stays authoritative.
type Service struct {
	store Store
	guard cache.Guard
	keyer cache.Keyer
	cfg   Config

	now   func() time.Time
	newID func() string
}

// NewService wires a service. guard and keyer may be nil.
func NewService(store Store, guard cache.Guard, keyer cache.Keyer, cfg Config) *Service {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	def := DefaultConfig()
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = def.GuardTTL
	}
	extras := make(map[ExtraQuestion]ExtraConfig, len(def.Extras))
	for q, c := range def.Extras {
		if own, ok := cfg.Extras[q]; ok {
			if own.ValidityWeeks <= 0 {
				own.ValidityWeeks = c.ValidityWeeks
			}
			if len(own.Options) == 0 {
				own.Options = c.Options
			}
			c = own
		}
		extras[q] = c
	}
	cfg.Extras = extras
	return &Service{
		store: store,
		guard: guard,
		keyer: keyer,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Config returns the service configuration.
func (s *Service) Config() Config { return s.cfg }

// CreateQuestion stores a new weekly question.
func (s *Service) CreateQuestion(ctx context.Context, text string) (Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Question{}, errors.New(errors.ErrCodeInvalidInput, "question text cannot be empty")
	}
	q := Question{ID: s.newID(), Text: text, CreatedAt: s.now()}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// LatestQuestion returns the current weekly question.
func (s *Service) LatestQuestion(ctx context.Context) (Question, error) {
	return s.store.LatestQuestion(ctx)
}

// RegisterUser stores u, assigning an ID and creation time when missing.
func (s *Service) RegisterUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = s.newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// MarkBlocked records that a user blocked the bot, removing them from
// future reminders.
func (s *Service) MarkBlocked(ctx context.Context, userID string) error {
	return s.store.SetBotBlocked(ctx, userID, true)
}

// RecordResponse stores a response. userID may be empty for an anonymous
// response. A user can answer each question once; a second attempt fails
// with errors.ErrCodeAlreadyResponded.
func (s *Service) RecordResponse(ctx context.Context, userID, questionID string, choice Choice) (Response, error) {
	if choice.Index() == 0 {
		return Response{}, errors.New(errors.ErrCodeInvalidChoice, "unknown choice %q", choice)
	}
	if _, err := s.store.GetQuestion(ctx, questionID); err != nil {
		return Response{}, err
	}

	claimed := false
	if userID != "" {
		if _, err := s.store.GetUser(ctx, userID); err != nil {
			return Response{}, err
		}
		if s.guard != nil {
			// A failing guard falls back to the store's uniqueness check.
			ok, err := s.guard.Acquire(ctx, s.keyer.ResponseKey(userID, questionID), s.cfg.GuardTTL)
			if err == nil && !ok {
				observability.Survey().OnDuplicate(ctx, questionID, userID)
				return Response{}, errors.New(errors.ErrCodeAlreadyResponded, "user %s already answered question %s", userID, questionID)
			}
			claimed = err == nil
		}
	}

	r := Response{
		ID:         s.newID(),
		UserID:     userID,
		QuestionID: questionID,
		Choice:     choice,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertResponse(ctx, r); err != nil {
		if errors.Is(err, errors.ErrCodeAlreadyResponded) {
			observability.Survey().OnDuplicate(ctx, questionID, userID)
		} else if claimed {
			_ = s.guard.Release(ctx, s.keyer.ResponseKey(userID, questionID))
		}
		return Response{}, err
	}
	observability.Survey().OnResponse(ctx, questionID, userID, string(choice))
	return r, nil
}

// UserResponse returns the user's response to a question, if any.
func (s *Service) UserResponse(ctx context.Context, userID, questionID string) (Response, bool, error) {
	return s.store.FindResponse(ctx, userID, questionID)
}

// PendingUsers lists users to remind about a question.
func (s *Service) PendingUsers(ctx context.Context, questionID string) ([]User, error) {
	return s.store.UsersWithoutResponse(ctx, questionID)
}

// NextExtraQuestion returns the first follow-up the user has not answered
// within its validity window. The boolean is false when every answer is
// current.
func (s *Service) NextExtraQuestion(ctx context.Context, userID string) (ExtraQuestion, bool, error) {
	now := s.now()
	for _, q := range ExtraQuestions {
		since := now.AddDate(0, 0, -7*s.cfg.Extras[q].ValidityWeeks)
		has, err := s.store.HasExtraAnswerSince(ctx, userID, q, since)
		if err != nil {
			return "", false, err
		}
		if !has {
			return q, true, nil
		}
	}
	return "", false, nil
}

// RecordExtraAnswer stores a follow-up answer. The answer must be one of
// the question's configured options. Anonymous answers must reference the
// response they follow, and a referenced response must exist.
func (s *Service) RecordExtraAnswer(ctx context.Context, userID string, q ExtraQuestion, answer, responseID string) (ExtraAnswer, error) {
	qc, ok := s.cfg.Extras[q]
	if !ok {
		return ExtraAnswer{}, errors.New(errors.ErrCodeInvalidInput, "unknown extra question %q", q)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ExtraAnswer{}, errors.New(errors.ErrCodeInvalidInput, "answer cannot be empty")
	}
	if !qc.Accepts(answer) {
		return ExtraAnswer{}, errors.New(errors.ErrCodeInvalidInput, "%q is not an option of %s", answer, q)
	}
	if userID == "" && responseID == "" {
		return ExtraAnswer{}, errors.New(errors.ErrCodeInvalidInput, "anonymous answers need a response id")
	}
	if responseID != "" {
		if _, err := s.store.GetResponse(ctx, responseID); err != nil {
			return ExtraAnswer{}, err
		}
	}
	a := ExtraAnswer{
		ID:         s.newID(),
		UserID:     userID,
		Question:   q,
		Answer:     answer,
		ResponseID: responseID,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertExtraAnswer(ctx, a); err != nil {
		return ExtraAnswer{}, err
	}
	return a, nil
}

// RecordFeedback stores free-text feedback.
func (s *Service) RecordFeedback(ctx context.Context, userID, text string) (Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Feedback{}, errors.New(errors.ErrCodeInvalidInput, "feedback cannot be empty")
	}
	f := Feedback{ID: s.newID(), UserID: userID, Text: text, CreatedAt: s.now()}
	if err := s.store.InsertFeedback(ctx, f); err != nil {
		return Feedback{}, err
	}
	return f, nil
}

// Results tallies the responses to a question.
func (s *Service) Results(ctx context.Context, questionID string) (Question, Results, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return Question{}, Results{}, err
	}
	responses, err := s.store.ListResponses(ctx, questionID)
	if err != nil {
		return Question{}, Results{}, err
	}
	return q, Tally(responses), nil
}

// BuildRequest turns the current results of a question into a card
// request. selected highlights the viewer's own answer; pass "" for none.
func (s *Service) BuildRequest(ctx context.Context, questionID string, selected Choice) (card.Request, error) {
	sel := 0
	if selected != "" {
		if sel = selected.Index(); sel == 0 {
			return card.Request{}, errors.New(errors.ErrCodeInvalidChoice, "unknown choice %q", selected)
		}
	}
	q, res, err := s.Results(ctx, questionID)
	if err != nil {
		return card.Request{}, err
	}
	return s.Request(q, res, sel), nil
}

// Request builds a card request from already tallied results.
func (s *Service) Request(q Question, res Results, selected int) card.Request {
	options := make([]card.Option, len(Choices))
	for i := range Choices {
		options[i] = card.Option{Label: s.cfg.OptionTexts[i], Percentage: res.Shares[i]}
	}
	return card.Request{
		Date:     q.Date(),
		Question: q.Text,
		Overall:  res.Overall,
		Labels:   s.cfg.Labels,
		Options:  options,
		Votes:    res.Votes,
		Selected: selected,
	}
}

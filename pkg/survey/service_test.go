package survey

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/pollcard/pkg/cache"
	"github.com/matzehuels/pollcard/pkg/errors"
)

type fixture struct {
	svc   *Service
	store *MemoryStore
	now   time.Time
	q     Question
	users []User
}

func newFixture(t *testing.T, guard cache.Guard) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store: NewMemoryStore(),
		now:   time.Date(2024, 5, 21, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, guard, nil, DefaultConfig())
	f.svc.now = func() time.Time { return f.now }
	n := 0
	f.svc.newID = func() string { n++; return fmt.Sprintf("id-%03d", n) }

	q, err := f.svc.CreateQuestion(ctx, "  Как прошла неделя?  ")
	if err != nil {
		t.Fatal(err)
	}
	f.q = q
	for i := 0; i < 3; i++ {
		u, err := f.svc.RegisterUser(ctx, User{TelegramID: int64(100 + i), ChatID: int64(100 + i)})
		if err != nil {
			t.Fatal(err)
		}
		f.users = append(f.users, u)
	}
	return f
}

func TestCreateQuestion(t *testing.T) {
	f := newFixture(t, nil)
	if f.q.Text != "Как прошла неделя?" {
		t.Errorf("text not trimmed: %q", f.q.Text)
	}
	latest, err := f.svc.LatestQuestion(context.Background())
	if err != nil || latest.ID != f.q.ID {
		t.Errorf("LatestQuestion = %v, %v", latest, err)
	}
	if _, err := f.svc.CreateQuestion(context.Background(), " "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty question error = %v", err)
	}
}

func TestLatestQuestionEmpty(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, DefaultConfig())
	if _, err := svc.LatestQuestion(context.Background()); !errors.Is(err, errors.ErrCodeQuestionNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeQuestionNotFound)
	}
}

func TestRecordResponseDuplicate(t *testing.T) {
	for name, guard := range map[string]cache.Guard{
		"store only": nil,
		"with guard": cache.NewMemoryCache(),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, guard)
			u := f.users[0]

			r, err := f.svc.RecordResponse(ctx, u.ID, f.q.ID, Option3)
			if err != nil {
				t.Fatal(err)
			}
			if r.Choice != Option3 || r.UserID != u.ID || r.CreatedAt != f.now {
				t.Errorf("unexpected response %+v", r)
			}

			_, err = f.svc.RecordResponse(ctx, u.ID, f.q.ID, Option1)
			if !errors.Is(err, errors.ErrCodeAlreadyResponded) {
				t.Fatalf("second response error = %v, want %s", err, errors.ErrCodeAlreadyResponded)
			}

			got, ok, err := f.svc.UserResponse(ctx, u.ID, f.q.ID)
			if err != nil || !ok || got.Choice != Option3 {
				t.Errorf("UserResponse = %+v, %v, %v; first answer should be kept", got, ok, err)
			}
		})
	}
}

func TestRecordResponseAnonymous(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, cache.NewMemoryCache())
	for i := 0; i < 3; i++ {
		if _, err := f.svc.RecordResponse(ctx, "", f.q.ID, Option2); err != nil {
			t.Fatalf("anonymous response %d: %v", i, err)
		}
	}
	_, res, err := f.svc.Results(ctx, f.q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Votes != 3 {
		t.Errorf("Votes = %d, want 3", res.Votes)
	}
}

func TestRecordResponseErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	tests := []struct {
		name   string
		user   string
		q      string
		choice Choice
		code   errors.Code
	}{
		{"bad choice", f.users[0].ID, f.q.ID, "Option6", errors.ErrCodeInvalidChoice},
		{"unknown question", f.users[0].ID, "nope", Option1, errors.ErrCodeQuestionNotFound},
		{"unknown user", "ghost", f.q.ID, Option1, errors.ErrCodeUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.RecordResponse(ctx, tt.user, tt.q, tt.choice); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

// failingStore rejects every response insert.
type failingStore struct{ *MemoryStore }

func (failingStore) InsertResponse(context.Context, Response) error {
	return errors.New(errors.ErrCodeStorage, "disk full")
}

func TestRecordResponseReleasesGuardOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	guard := cache.NewMemoryCache()
	svc := NewService(failingStore{f.store}, guard, nil, DefaultConfig())

	if _, err := svc.RecordResponse(ctx, f.users[0].ID, f.q.ID, Option1); !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeStorage)
	}
	if guard.Len() != 0 {
		t.Error("guard claim should be released after a failed insert")
	}
}

func TestPendingUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.svc.RecordResponse(ctx, f.users[0].ID, f.q.ID, Option1); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.MarkBlocked(ctx, f.users[1].ID); err != nil {
		t.Fatal(err)
	}

	pending, err := f.svc.PendingUsers(ctx, f.q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != f.users[2].ID {
		t.Errorf("PendingUsers = %+v, want only %s", pending, f.users[2].ID)
	}
}

func TestNextExtraQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	u := f.users[0].ID

	next := func() ExtraQuestion {
		t.Helper()
		q, ok, err := f.svc.NextExtraQuestion(ctx, u)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			return ""
		}
		return q
	}

	if got := next(); got != AreYouInRussia {
		t.Fatalf("first follow-up = %q, want %s", got, AreYouInRussia)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, u, AreYouInRussia, "Да", ""); err != nil {
		t.Fatal(err)
	}
	if got := next(); got != HowOldAreYou {
		t.Fatalf("second follow-up = %q, want %s", got, HowOldAreYou)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, u, HowOldAreYou, "25-34", ""); err != nil {
		t.Fatal(err)
	}
	if got := next(); got != "" {
		t.Fatalf("all answered, got %q", got)
	}

	// Residency expires after 4 weeks, age after 52.
	f.now = f.now.AddDate(0, 0, 5*7)
	if got := next(); got != AreYouInRussia {
		t.Errorf("after 5 weeks = %q, want %s", got, AreYouInRussia)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, u, AreYouInRussia, "Нет", ""); err != nil {
		t.Fatal(err)
	}
	if got := next(); got != "" {
		t.Errorf("age should still be current, got %q", got)
	}
	f.now = f.now.AddDate(0, 0, 53*7)
	if got := next(); got != AreYouInRussia {
		t.Errorf("after a year = %q, want %s", got, AreYouInRussia)
	}
}

func TestRecordExtraAnswerValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.svc.RecordExtraAnswer(ctx, f.users[0].ID, "Income", "x", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown question error = %v", err)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, f.users[0].ID, HowOldAreYou, " ", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty answer error = %v", err)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, "", HowOldAreYou, "18-24", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("anonymous without response error = %v", err)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, f.users[0].ID, HowOldAreYou, "banana", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("answer outside options error = %v", err)
	}
	if _, err := f.svc.RecordExtraAnswer(ctx, "", HowOldAreYou, "18-24", "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown response error = %v, want %s", err, errors.ErrCodeNotFound)
	}

	r, err := f.svc.RecordResponse(ctx, "", f.q.ID, Option2)
	if err != nil {
		t.Fatal(err)
	}
	a, err := f.svc.RecordExtraAnswer(ctx, "", HowOldAreYou, " 18-24 ", r.ID)
	if err != nil {
		t.Fatalf("anonymous with response: %v", err)
	}
	if a.ResponseID != r.ID || a.Answer != "18-24" {
		t.Errorf("answer = %+v", a)
	}
}

func TestExtraConfigOverrides(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Extras = map[ExtraQuestion]ExtraConfig{
		AreYouInRussia: {Options: []string{"yes", "no"}},
	}
	svc := NewService(NewMemoryStore(), nil, nil, cfg)

	got := svc.Config().Extras
	if got[AreYouInRussia].ValidityWeeks != 4 {
		t.Errorf("unset validity should keep default, got %d", got[AreYouInRussia].ValidityWeeks)
	}
	if len(got[HowOldAreYou].Options) == 0 {
		t.Error("missing question should keep default options")
	}
	if _, err := svc.RecordExtraAnswer(ctx, "u1", AreYouInRussia, "Да", ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("default option should be replaced, error = %v", err)
	}
	if _, err := svc.RecordExtraAnswer(ctx, "u1", AreYouInRussia, "yes", ""); err != nil {
		t.Errorf("configured option: %v", err)
	}
}

func TestRecordFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	if _, err := f.svc.RecordFeedback(ctx, f.users[0].ID, "  спасибо  "); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.RecordFeedback(ctx, f.users[0].ID, ""); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty feedback error = %v", err)
	}
	fb := f.store.Feedback()
	if len(fb) != 1 || fb[0].Text != "спасибо" {
		t.Errorf("stored feedback = %+v", fb)
	}
}

func TestBuildRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	choices := []Choice{Option1, Option2, Option5}
	for i, c := range choices {
		if _, err := f.svc.RecordResponse(ctx, f.users[i].ID, f.q.ID, c); err != nil {
			t.Fatal(err)
		}
	}

	req, err := f.svc.BuildRequest(ctx, f.q.ID, Option2)
	if err != nil {
		t.Fatal(err)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("built request is invalid: %v", err)
	}
	if req.Date != "21.05.2024" {
		t.Errorf("Date = %q", req.Date)
	}
	// (0 + 25 + 100) / 3 = 41.67
	if req.Overall != 42 {
		t.Errorf("Overall = %d, want 42", req.Overall)
	}
	if req.Votes != 3 || req.Selected != 2 {
		t.Errorf("Votes = %d, Selected = %d", req.Votes, req.Selected)
	}
	if len(req.Options) != 5 || req.Options[0].Percentage != 33 || req.Options[2].Percentage != 0 {
		t.Errorf("Options = %+v", req.Options)
	}
	if req.Options[4].Label != DefaultConfig().OptionTexts[4] {
		t.Errorf("option labels should come from config")
	}

	if _, err := f.svc.BuildRequest(ctx, f.q.ID, "bogus"); !errors.Is(err, errors.ErrCodeInvalidChoice) {
		t.Errorf("bogus selection error = %v", err)
	}
	noSel, err := f.svc.BuildRequest(ctx, f.q.ID, "")
	if err != nil || noSel.Selected != 0 {
		t.Errorf("no selection = %d, %v", noSel.Selected, err)
	}
}

func TestBuildRequestNoVotes(t *testing.T) {
	f := newFixture(t, nil)
	req, err := f.svc.BuildRequest(context.Background(), f.q.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Votes != 0 || req.Overall != 0 {
		t.Errorf("Votes = %d, Overall = %d", req.Votes, req.Overall)
	}
	for i, o := range req.Options {
		if o.Percentage != 0 {
			t.Errorf("option %d = %v, want 0", i, o.Percentage)
		}
	}
	if err := req.Validate(); err != nil {
		t.Errorf("zero-vote request should be valid: %v", err)
	}
}

package survey

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/pollcard/pkg/errors"
)

// Store persists survey data. Implementations must enforce at most one
// response per (user, question) for non-anonymous responses and report a
// violation with errors.ErrCodeAlreadyResponded.
type Store interface {
	CreateQuestion(ctx context.Context, q Question) error
	// LatestQuestion returns the most recently created question or an
	// errors.ErrCodeQuestionNotFound error.
	LatestQuestion(ctx context.Context) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)

	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	SetBotBlocked(ctx context.Context, userID string, blocked bool) error
	// UsersWithoutResponse lists users that have not answered questionID and
	// have not blocked the bot.
	UsersWithoutResponse(ctx context.Context, questionID string) ([]User, error)

	InsertResponse(ctx context.Context, r Response) error
	FindResponse(ctx context.Context, userID, questionID string) (Response, bool, error)
	// GetResponse returns the response with id or an
	// errors.ErrCodeNotFound error.
	GetResponse(ctx context.Context, id string) (Response, error)
	ListResponses(ctx context.Context, questionID string) ([]Response, error)

	InsertExtraAnswer(ctx context.Context, a ExtraAnswer) error
	// HasExtraAnswerSince reports whether userID answered q after since.
	HasExtraAnswerSince(ctx context.Context, userID string, q ExtraQuestion, since time.Time) (bool, error)

	InsertFeedback(ctx context.Context, f Feedback) error

	Close(ctx context.Context) error
}

// MemoryStore keeps everything in maps. It is used by tests and by the
// CLI when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	users     map[string]User
	responses []Response
	extras    []ExtraAnswer
	feedback  []Feedback
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: make(map[string]Question),
		users:     make(map[string]User),
	}
}

func (s *MemoryStore) CreateQuestion(_ context.Context, q Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	return nil
}

func (s *MemoryStore) LatestQuestion(_ context.Context) (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest Question
	found := false
	for _, q := range s.questions {
		if !found || q.CreatedAt.After(latest.CreatedAt) {
			latest, found = q, true
		}
	}
	if !found {
		return Question{}, errors.New(errors.ErrCodeQuestionNotFound, "no questions yet")
	}
	return latest, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return Question{}, errors.New(errors.ErrCodeQuestionNotFound, "question %s not found", id)
	}
	return q, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, errors.New(errors.ErrCodeUserNotFound, "user %s not found", id)
	}
	return u, nil
}

func (s *MemoryStore) SetBotBlocked(_ context.Context, userID string, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return errors.New(errors.ErrCodeUserNotFound, "user %s not found", userID)
	}
	u.BotBlocked = blocked
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) UsersWithoutResponse(_ context.Context, questionID string) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answered := make(map[string]bool)
	for _, r := range s.responses {
		if r.QuestionID == questionID && !r.Anonymous() {
			answered[r.UserID] = true
		}
	}
	var out []User
	for _, u := range s.users {
		if !u.BotBlocked && !answered[u.ID] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) InsertResponse(_ context.Context, r Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !r.Anonymous() {
		for _, existing := range s.responses {
			if existing.UserID == r.UserID && existing.QuestionID == r.QuestionID {
				return errors.New(errors.ErrCodeAlreadyResponded, "user %s already answered question %s", r.UserID, r.QuestionID)
			}
		}
	}
	s.responses = append(s.responses, r)
	return nil
}

func (s *MemoryStore) FindResponse(_ context.Context, userID, questionID string) (Response, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.responses {
		if r.UserID == userID && r.QuestionID == questionID && userID != "" {
			return r, true, nil
		}
	}
	return Response{}, false, nil
}

func (s *MemoryStore) GetResponse(_ context.Context, id string) (Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.responses {
		if r.ID == id {
			return r, nil
		}
	}
	return Response{}, errors.New(errors.ErrCodeNotFound, "response %s not found", id)
}

func (s *MemoryStore) ListResponses(_ context.Context, questionID string) ([]Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Response
	for _, r := range s.responses {
		if r.QuestionID == questionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertExtraAnswer(_ context.Context, a ExtraAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extras = append(s.extras, a)
	return nil
}

func (s *MemoryStore) HasExtraAnswerSince(_ context.Context, userID string, q ExtraQuestion, since time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.extras {
		if a.UserID == userID && a.Question == q && a.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) InsertFeedback(_ context.Context, f Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, f)
	return nil
}

// Feedback returns a copy of all stored feedback.
func (s *MemoryStore) Feedback() []Feedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Feedback(nil), s.feedback...)
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)

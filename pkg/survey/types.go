package survey

import (
	"time"

	"github.com/matzehuels/pollcard/pkg/errors"
)

// Choice is one of the five ordered answer buckets of the weekly question,
// from least to most affected.
type Choice string

const (
	Option1 Choice = "Option1"
	Option2 Choice = "Option2"
	Option3 Choice = "Option3"
	Option4 Choice = "Option4"
	Option5 Choice = "Option5"
)

// Choices lists every bucket in display order.
var Choices = []Choice{Option1, Option2, Option3, Option4, Option5}

// ParseChoice validates s as a Choice.
func ParseChoice(s string) (Choice, error) {
	for _, c := range Choices {
		if string(c) == s {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidChoice, "unknown choice %q", s)
}

// Index returns the 1-based position of c, or 0 when c is not a valid choice.
func (c Choice) Index() int {
	for i, v := range Choices {
		if v == c {
			return i + 1
		}
	}
	return 0
}

// Severity is the weight of c in the overall percentage: 0, 25, 50, 75 or
// 100 for Option1 through Option5.
func (c Choice) Severity() int {
	if i := c.Index(); i > 0 {
		return (i - 1) * 25
	}
	return 0
}

// Question is the weekly question.
type Question struct {
	ID        string    `json:"id" bson:"_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Date formats the question date as DD.MM.YYYY.
func (q Question) Date() string {
	return q.CreatedAt.Format(errors.DateLayout)
}

// Response is one answer to a question. UserID is empty for anonymous
// responses submitted through the API.
type Response struct {
	ID         string    `json:"id" bson:"_id"`
	UserID     string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	QuestionID string    `json:"question_id" bson:"question_id"`
	Choice     Choice    `json:"choice" bson:"choice"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Anonymous reports whether r has no user.
func (r Response) Anonymous() bool { return r.UserID == "" }

// User is a bot subscriber.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	TelegramID   int64     `json:"telegram_id" bson:"telegram_id"`
	ChatID       int64     `json:"chat_id" bson:"chat_id"`
	LanguageCode string    `json:"language_code,omitempty" bson:"language_code,omitempty"`
	IsBot        bool      `json:"is_bot" bson:"is_bot"`
	BotBlocked   bool      `json:"bot_blocked" bson:"bot_blocked"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// ExtraQuestion is a demographic follow-up asked after a response.
type ExtraQuestion string

const (
	AreYouInRussia ExtraQuestion = "AreYouInRussia"
	HowOldAreYou   ExtraQuestion = "HowOldAreYou"
)

// ExtraQuestions lists follow-ups in the order they are asked.
var ExtraQuestions = []ExtraQuestion{AreYouInRussia, HowOldAreYou}

// ExtraConfig describes how a follow-up is asked.
type ExtraConfig struct {
	// ValidityWeeks is how long an answer stays current. After that the
	// question is asked again.
	ValidityWeeks int `toml:"validity_weeks"`
	// Options are the accepted answers.
	Options []string `toml:"options"`
}

// Accepts reports whether answer is one of the configured options.
func (c ExtraConfig) Accepts(answer string) bool {
	for _, o := range c.Options {
		if o == answer {
			return true
		}
	}
	return false
}

// ParseExtraQuestion validates s as an ExtraQuestion.
func ParseExtraQuestion(s string) (ExtraQuestion, error) {
	for _, q := range ExtraQuestions {
		if string(q) == s {
			return q, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown extra question %q", s)
}

// ExtraAnswer is an answer to an ExtraQuestion, optionally tied to the
// response it followed.
type ExtraAnswer struct {
	ID         string        `json:"id" bson:"_id"`
	UserID     string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Question   ExtraQuestion `json:"question" bson:"question"`
	Answer     string        `json:"answer" bson:"answer"`
	ResponseID string        `json:"response_id,omitempty" bson:"response_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
}

// Feedback is free text sent by a user.
type Feedback struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

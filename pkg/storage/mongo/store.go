// Package mongo implements survey.Store on MongoDB.
//
// Collections: questions, users, responses, extra_answers and feedback.
// [Store.EnsureIndexes] creates a unique index on responses (user_id,
// question_id) restricted to documents that have a user_id, so anonymous
// responses are unlimited while each user answers a question once.
package mongo

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pollcard/pkg/cache"
	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/survey"
)

// Collection names.
const (
	Questions    = "questions"
	Users        = "users"
	Responses    = "responses"
	ExtraAnswers = "extra_answers"
	FeedbackColl = "feedback"
)

// Store provides survey persistence on one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing client. Indexes are not created.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		Questions: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		Users: {
			{Keys: bson.D{{Key: "telegram_id", Value: 1}}},
		},
		Responses: {
			{
				Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "question_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"user_id": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "question_id", Value: 1}}},
		},
		ExtraAnswers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "question", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "create indexes on %s", coll)
		}
	}
	return nil
}

func (s *Store) CreateQuestion(ctx context.Context, q survey.Question) error {
	_, err := s.db.Collection(Questions).InsertOne(ctx, q)
	return storageErr(err, "insert question")
}

func (s *Store) LatestQuestion(ctx context.Context) (survey.Question, error) {
	var q survey.Question
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.db.Collection(Questions).FindOne(ctx, bson.M{}, opts).Decode(&q)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return survey.Question{}, errors.New(errors.ErrCodeQuestionNotFound, "no questions yet")
	}
	return q, storageErr(err, "find latest question")
}

func (s *Store) GetQuestion(ctx context.Context, id string) (survey.Question, error) {
	var q survey.Question
	err := s.db.Collection(Questions).FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return survey.Question{}, errors.New(errors.ErrCodeQuestionNotFound, "question %s not found", id)
	}
	return q, storageErr(err, "find question")
}

func (s *Store) SaveUser(ctx context.Context, u survey.User) error {
	_, err := s.db.Collection(Users).ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	return storageErr(err, "save user")
}

func (s *Store) GetUser(ctx context.Context, id string) (survey.User, error) {
	var u survey.User
	err := s.db.Collection(Users).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return survey.User{}, errors.New(errors.ErrCodeUserNotFound, "user %s not found", id)
	}
	return u, storageErr(err, "find user")
}

func (s *Store) SetBotBlocked(ctx context.Context, userID string, blocked bool) error {
	res, err := s.db.Collection(Users).UpdateByID(ctx, userID, bson.M{"$set": bson.M{"bot_blocked": blocked}})
	if err != nil {
		return storageErr(err, "update user")
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeUserNotFound, "user %s not found", userID)
	}
	return nil
}

func (s *Store) UsersWithoutResponse(ctx context.Context, questionID string) ([]survey.User, error) {
	answered, err := s.db.Collection(Responses).Distinct(ctx, "user_id", bson.M{
		"question_id": questionID,
		"user_id":     bson.M{"$exists": true},
	})
	if err != nil {
		return nil, storageErr(err, "list respondents")
	}
	filter := bson.M{"bot_blocked": false}
	if len(answered) > 0 {
		filter["_id"] = bson.M{"$nin": answered}
	}
	cur, err := s.db.Collection(Users).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageErr(err, "list users")
	}
	var users []survey.User
	return users, storageErr(cur.All(ctx, &users), "decode users")
}

func (s *Store) InsertResponse(ctx context.Context, r survey.Response) error {
	_, err := s.db.Collection(Responses).InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(errors.ErrCodeAlreadyResponded, err, "user %s already answered question %s", r.UserID, r.QuestionID)
	}
	return storageErr(err, "insert response")
}

func (s *Store) FindResponse(ctx context.Context, userID, questionID string) (survey.Response, bool, error) {
	if userID == "" {
		return survey.Response{}, false, nil
	}
	var r survey.Response
	err := s.db.Collection(Responses).FindOne(ctx, bson.M{"user_id": userID, "question_id": questionID}).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return survey.Response{}, false, nil
	}
	if err != nil {
		return survey.Response{}, false, storageErr(err, "find response")
	}
	return r, true, nil
}

func (s *Store) GetResponse(ctx context.Context, id string) (survey.Response, error) {
	var r survey.Response
	err := s.db.Collection(Responses).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return survey.Response{}, errors.New(errors.ErrCodeNotFound, "response %s not found", id)
	}
	return r, storageErr(err, "find response")
}

func (s *Store) ListResponses(ctx context.Context, questionID string) ([]survey.Response, error) {
	cur, err := s.db.Collection(Responses).Find(ctx, bson.M{"question_id": questionID})
	if err != nil {
		return nil, storageErr(err, "list responses")
	}
	var out []survey.Response
	return out, storageErr(cur.All(ctx, &out), "decode responses")
}

func (s *Store) InsertExtraAnswer(ctx context.Context, a survey.ExtraAnswer) error {
	_, err := s.db.Collection(ExtraAnswers).InsertOne(ctx, a)
	return storageErr(err, "insert extra answer")
}

func (s *Store) HasExtraAnswerSince(ctx context.Context, userID string, q survey.ExtraQuestion, since time.Time) (bool, error) {
	n, err := s.db.Collection(ExtraAnswers).CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"question":   q,
		"created_at": bson.M{"$gt": since},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, storageErr(err, "count extra answers")
	}
	return n > 0, nil
}

func (s *Store) InsertFeedback(ctx context.Context, f survey.Feedback) error {
	_, err := s.db.Collection(FeedbackColl).InsertOne(ctx, f)
	return storageErr(err, "insert feedback")
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return storageErr(s.client.Disconnect(ctx), "disconnect")
}

// storageErr wraps driver errors. Context deadlines map to a timeout.
func storageErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s", op)
	default:
		return errors.Wrap(errors.ErrCodeStorage, err, "%s", op)
	}
}

var _ survey.Store = (*Store)(nil)

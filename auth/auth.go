// Package auth owns the Session: email/password sign-up, sign-in and
// sign-out against the users collection. Everything else in this repo only
// reads the Session it maintains.
package auth

import (
	"context"

	"github.com/catchuapp/catchu/gateway"
	"github.com/catchuapp/catchu/model"
	"github.com/catchuapp/catchu/session"
	Logger "github.com/catchuapp/catchu/utils/log"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken    = errors.New("an account with this email already exists")
	ErrNoSuchAccount = errors.New("no account exists for this email")
	ErrWrongPassword = errors.New("password does not match")
)

// credentials is validated before any network call, an invalid email or a
// short password never reaches the gateway.
type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type Service struct {
	gateway  gateway.DocumentGateway
	session  *session.Session
	validate *validator.Validate
}

func NewService(g gateway.DocumentGateway, s *session.Session) *Service {
	return &Service{
		gateway:  g,
		session:  s,
		validate: validator.New(),
	}
}

// SignUp registers a new account. The fresh account is signed out on
// purpose: the user is expected to log in explicitly afterwards.
func (s *Service) SignUp(ctx context.Context, email, password string) error {
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return errors.Wrap(err, "invalid sign up input")
	}

	existing, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "fail to hash password")
	}

	if _, err := s.gateway.CreateDocument(ctx, model.UserCollection, map[string]interface{}{
		"email":        email,
		"passwordHash": string(hash),
		"createDate":   gateway.ServerTimestamp,
	}); err != nil {
		return errors.Wrap(err, "fail to create account")
	}

	s.session.Clear()
	Logger.Log.Info("account created for ", email)
	return nil
}

// SignIn verifies credentials and sets the Session on success.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	user, err := s.lookupByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNoSuchAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}

	s.session.Set(model.Identity{Uid: user.Id, Email: user.Email})
	return nil
}

func (s *Service) SignOut() {
	s.session.Clear()
}

func (s *Service) lookupByEmail(ctx context.Context, email string) (*model.User, error) {
	snapshot, err := s.gateway.QueryDocuments(ctx, model.UserCollection, gateway.Query{
		Filter: &gateway.FieldFilter{Field: "email", Value: email},
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to look up account")
	}
	if len(snapshot) == 0 {
		return nil, nil
	}

	doc := snapshot[0]
	user := &model.User{Id: doc.Id}
	user.Email, _ = doc.Fields["email"].(string)
	user.PasswordHash, _ = doc.Fields["passwordHash"].(string)
	return user, nil
}

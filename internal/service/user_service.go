package service

import (
	"errors"

	"miniblog/internal/model"
	"miniblog/internal/pkg"
	"miniblog/internal/repository/mysql"
	"miniblog/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo     *mysql.UserRepository
	sessions *redis.SessionRepository
	resetSvc *EmailService
}

func NewUserService(emailCfg pkg.SMTPConfig) *UserService {
	return &UserService{
		repo:     &mysql.UserRepository{DB: mysql.DB},
		sessions: &redis.SessionRepository{},
		resetSvc: NewEmailService(emailCfg),
	}
}

func (s *UserService) Register(username, password, email string) (FieldErrors, error) {
	fe := FieldErrors{}
	if username == "" {
		fe["username"] = "Username is required."
	}
	if len(password) < 6 {
		fe["password"] = "Password must be at least 6 characters."
	}
	if email == "" {
		fe["email"] = "Email is required."
	}
	if len(fe) > 0 {
		return fe, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}
	if err := s.repo.Create(user); err != nil {
		// Only a unique-index hit is the user's problem; anything else
		// is a persistence failure and stays fatal for the request.
		if isDuplicatedKey(err) {
			return FieldErrors{"username": "That username or email is taken."}, nil
		}
		return nil, err
	}
	return nil, nil
}

// Login verifies credentials, issues a session token and whitelists it
// in redis. The returned token goes into the session cookie.
func (s *UserService) Login(username, password string) (string, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return "", errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", errors.New("invalid password")
	}

	token, err := pkg.GenerateSessionToken(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	if err := s.sessions.AddToken(user.ID, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) Logout(userID uint64) error {
	return s.sessions.DeleteToken(userID)
}

// ChangePassword replaces the password of a logged-in user after
// checking the old one. On success the session dies with the old
// password, same as a reset.
func (s *UserService) ChangePassword(userID uint64, oldPassword, newPassword string) (FieldErrors, error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	fe := FieldErrors{}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		fe["old_password"] = "Old password is incorrect."
	}
	if len(newPassword) < 6 {
		fe["new_password"] = "Password must be at least 6 characters."
	}
	if len(fe) > 0 {
		return fe, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePassword(user, string(hash)); err != nil {
		return nil, err
	}
	return nil, s.Logout(userID)
}

// SendResetCode emails a one-time code to an existing account.
func (s *UserService) SendResetCode(email string) error {
	if _, err := s.repo.FindByEmail(email); err != nil {
		return errors.New("no account with that email")
	}
	return s.resetSvc.SendResetCode(email)
}

// ResetPassword verifies the emailed code and replaces the password.
func (s *UserService) ResetPassword(email, code, newPassword string) error {
	ok, err := s.resetSvc.VerifyCode(email, code)
	if err != nil || !ok {
		return errors.New("verification failed")
	}

	user, err := s.repo.FindByEmail(email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}

	// Old sessions die with the old password.
	return s.Logout(user.ID)
}

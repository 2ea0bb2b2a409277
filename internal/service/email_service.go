package service

import (
	"miniblog/internal/pkg"
	"miniblog/internal/repository/redis"
)

type EmailService struct {
	emailCfg pkg.SMTPConfig
	rds      *redis.ResetCodeRepository
}

func NewEmailService(cfg pkg.SMTPConfig) *EmailService {
	return &EmailService{emailCfg: cfg, rds: &redis.ResetCodeRepository{}}
}

// SendResetCode generates a code, caches it, then mails it.
func (s *EmailService) SendResetCode(email string) error {
	code, err := pkg.NewResetCode()
	if err != nil {
		return err
	}
	if err := s.rds.SetCode(email, code); err != nil {
		return err
	}

	html := pkg.ResetCodeHTML(code, redis.DefaultResetCodeTTL)
	if err := pkg.SendEmail(s.emailCfg, email, "Password reset code", html); err != nil {
		_ = s.rds.DeleteCode(email)
		return err
	}
	return nil
}

// VerifyCode checks the code and deletes it on success (single use).
func (s *EmailService) VerifyCode(email, code string) (bool, error) {
	val, err := s.rds.GetCode(email)
	if err != nil {
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err := s.rds.DeleteCode(email); err != nil {
		return false, err
	}
	return true, nil
}

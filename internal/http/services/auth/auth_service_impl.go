package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/email"
	dto "github.com/trackshare/trackauth/internal/http/dto/auth"
	"github.com/trackshare/trackauth/internal/identity"
	"github.com/trackshare/trackauth/internal/observability/logger"
)

// Deps contains dependencies for the auth service.
type Deps struct {
	Credentials *identity.Credentials
	Sessions    SessionIssuer
	// Mailer es opcional: sin SMTP configurado queda nil y no se envía
	// el mail de bienvenida.
	Mailer email.Sender
}

type service struct {
	creds    *identity.Credentials
	sessions SessionIssuer
	mailer   email.Sender
}

// NewService creates the auth service.
func NewService(d Deps) Service {
	return &service{
		creds:    d.Credentials,
		sessions: d.Sessions,
		mailer:   d.Mailer,
	}
}

func (s *service) Register(ctx context.Context, req dto.RegisterRequest) (*types.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.register"))

	u, err := s.creds.Register(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return nil, err
	}

	log.Info("user registered", logger.UserID(u.ID))

	// El mail de bienvenida nunca bloquea ni falla el registro.
	if s.mailer != nil {
		go func(name, to string) {
			html, text := email.Welcome(name)
			if err := s.mailer.Send(to, email.WelcomeSubject, html, text); err != nil {
				logger.L().Warn("welcome email failed",
					logger.Component("auth.register"),
					logger.Email(to),
					logger.Err(err),
				)
			}
		}(u.Name, u.Email)
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, req dto.LoginRequest) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.login"))

	u, err := s.creds.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, expires, err := s.sessions.Issue(ctx, u)
	if err != nil {
		log.Error("session issuance failed", logger.UserID(u.ID), logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}

	log.Info("login ok", logger.UserID(u.ID))
	return &LoginResult{User: u, Token: token, Expires: expires}, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil && !errors.Is(err, context.Canceled) {
		logger.From(ctx).Warn("session destroy failed",
			logger.Component("auth.logout"),
			logger.Err(err),
		)
		return err
	}
	return nil
}

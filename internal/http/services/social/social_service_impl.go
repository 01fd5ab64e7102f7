package social

import (
	"context"
	"fmt"
	"time"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/identity"
	"github.com/trackshare/trackauth/internal/metrics"
	"github.com/trackshare/trackauth/internal/oauth"
	"github.com/trackshare/trackauth/internal/observability/logger"
	tokens "github.com/trackshare/trackauth/internal/security/token"
)

// SessionIssuer es lo que el servicio necesita del session manager.
type SessionIssuer interface {
	Issue(ctx context.Context, u *types.User) (string, time.Time, error)
}

// Deps contains dependencies for the social service.
type Deps struct {
	Registry   *oauth.Registry
	Signer     *oauth.StateSigner
	Reconciler *identity.Reconciler
	Sessions   SessionIssuer
}

type service struct {
	registry   *oauth.Registry
	signer     *oauth.StateSigner
	reconciler *identity.Reconciler
	sessions   SessionIssuer
}

// NewService creates the social service.
func NewService(d Deps) Service {
	return &service{
		registry:   d.Registry,
		signer:     d.Signer,
		reconciler: d.Reconciler,
		sessions:   d.Sessions,
	}
}

func (s *service) Start(ctx context.Context, provider string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.start"), logger.Provider(provider))

	strategy, ok := s.registry.Get(provider)
	if !ok {
		return "", ErrUnknownProvider
	}

	nonce, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	state, err := s.signer.Sign(oauth.StateClaims{Provider: provider, Nonce: nonce})
	if err != nil {
		log.Error("state signing failed", logger.Err(err))
		return "", fmt.Errorf("sign state: %w", err)
	}

	url, err := strategy.AuthURL(ctx, state, nonce)
	if err != nil {
		log.Error("auth url build failed", logger.Err(err))
		return "", fmt.Errorf("build auth url: %w", err)
	}

	log.Debug("social flow started")
	return url, nil
}

func (s *service) Callback(ctx context.Context, provider, state, code string) (*CallbackResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.callback"), logger.Provider(provider))

	strategy, ok := s.registry.Get(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}

	claims, err := s.signer.Parse(state)
	if err != nil {
		log.Warn("state rejected", logger.Err(err))
		return nil, ErrInvalidState
	}
	// El state debe pertenecer al proveedor del callback.
	if claims.Provider != provider {
		log.Warn("state provider mismatch", logger.String("state_provider", claims.Provider))
		return nil, ErrInvalidState
	}

	profile, err := strategy.Exchange(ctx, code, claims.Nonce)
	if err != nil {
		log.Warn("code exchange failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	u, created, err := s.reconciler.Reconcile(ctx, provider, identity.ProviderProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
	})
	if err != nil {
		metrics.RecordReconciliation(provider, "error")
		log.Error("reconciliation failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}
	if created {
		metrics.RecordReconciliation(provider, "created")
	} else {
		metrics.RecordReconciliation(provider, "existing")
	}

	token, expires, err := s.sessions.Issue(ctx, u)
	if err != nil {
		log.Error("session issuance failed", logger.UserID(u.ID), logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}

	log.Info("social login ok", logger.UserID(u.ID))
	return &CallbackResult{User: u, Token: token, Expires: expires}, nil
}

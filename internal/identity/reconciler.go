package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/store"
)

// ProviderProfile es lo mínimo que un proveedor externo entrega sobre
// el usuario autenticado.
type ProviderProfile struct {
	// ID es el subject estable del proveedor (sub de Google, id de
	// GitHub/Facebook).
	ID          string
	DisplayName string
	// Email puede venir vacío: no todos los perfiles lo exponen.
	Email string
}

// Reconciler mapea perfiles de proveedores al usuario canónico.
// Upsert idempotente sobre la clave (provider, provider_id).
type Reconciler struct {
	store store.Store
	now   func() time.Time
}

// NewReconciler crea el reconciliador.
func NewReconciler(s store.Store) *Reconciler {
	return &Reconciler{store: s, now: time.Now}
}

// Reconcile retorna el usuario existente para (provider, profile.ID) o
// crea uno nuevo; created indica cuál de las dos cosas pasó. Un usuario
// existente se retorna tal cual está guardado: un cambio posterior de
// perfil en el proveedor no se propaga.
//
// Es seguro llamarlo concurrentemente con el mismo perfil: si dos
// callbacks pasan el lookup y ambos insertan, el índice único hace
// fallar al segundo y acá se resuelve re-leyendo el registro ganador.
func (r *Reconciler) Reconcile(ctx context.Context, provider string, p ProviderProfile) (u *types.User, created bool, err error) {
	log := logger.From(ctx).With(logger.Component("identity.reconciler"), logger.Provider(provider))

	if provider == "" || p.ID == "" {
		return nil, false, fmt.Errorf("identity: reconcile: provider and subject id required")
	}

	existing, err := r.store.FindByProviderID(ctx, provider, p.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		log.Debug("known subject", logger.UserID(existing.ID))
		return existing, false, nil
	}

	email := p.Email
	if email == "" {
		email = types.NoEmail
	}
	u = &types.User{
		ID:         uuid.NewString(),
		Name:       p.DisplayName,
		Email:      email,
		Provider:   provider,
		ProviderID: p.ID,
		CreatedAt:  r.now().UTC(),
	}

	err = r.store.Insert(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		// Alguien lo creó entre el lookup y el insert: re-leer y usar
		// ese registro. El conflicto nunca sube al caller.
		winner, ferr := r.store.FindByProviderID(ctx, provider, p.ID)
		if ferr != nil {
			return nil, false, ferr
		}
		if winner == nil {
			return nil, false, fmt.Errorf("identity: reconcile: duplicate reported but subject not found")
		}
		log.Debug("lost insert race", logger.UserID(winner.ID))
		return winner, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	log.Info("user provisioned", logger.UserID(u.ID), logger.Email(u.Email))
	return u, true, nil
}

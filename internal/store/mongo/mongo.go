// Package mongo implementa el Store primario sobre MongoDB.
//
// La colección de usuarios lleva dos índices únicos parciales:
//
//   - (provider, provider_id) para cuentas de proveedores externos
//   - email para cuentas locales (las que tienen password)
//
// Son esos índices, y no el código de arriba, los que garantizan que un
// doble callback concurrente no duplique usuarios: el insert perdedor
// falla con duplicate key y se traduce a store.ErrDuplicate.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/store"
)

// Collection conserva el nombre de colección histórico de la app.
const Collection = "information"

const connectTimeout = 10 * time.Second

// Store implementa store.Store sobre una colección de MongoDB.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open conecta, verifica con ping y asegura los índices de unicidad.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: uri vacía")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(database).Collection(Collection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "provider", Value: 1}, {Key: "provider_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"provider": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"password": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure indexes: %w", err)
	}
	return nil
}

func (s *Store) FindByProviderID(ctx context.Context, provider, providerID string) (*types.User, error) {
	return s.findOne(ctx, bson.M{"provider": provider, "provider_id": providerID})
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*types.User, error) {
	var u types.User
	err := s.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: findOne: %w", err)
	}
	return &u, nil
}

func (s *Store) Insert(ctx context.Context, u *types.User) error {
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("mongo: insertOne: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

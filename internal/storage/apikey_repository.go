package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// ErrAPIKeyNotFound is returned when no (non-revoked) key matches.
var ErrAPIKeyNotFound = errors.New("storage: api key not found")

const (
	apiKeySchemePrefix = "tmk"
	prefixBytes        = 6
	secretBytes        = 24
)

// APIKeyRepository issues and verifies bearer API keys. Keys are shown to
// the caller exactly once, at creation time, in the form
// "tmk_<prefix>_<secret>"; only a bcrypt hash of the secret is stored. The
// prefix is kept in the clear so Verify can narrow its lookup to a single
// row instead of bcrypt-comparing against every key in the table.
type APIKeyRepository struct {
	db   bun.IDB
	cost int
}

// NewAPIKeyRepository builds an APIKeyRepository. cost is the bcrypt work
// factor; 0 selects bcrypt.DefaultCost.
func NewAPIKeyRepository(db bun.IDB, cost int) *APIKeyRepository {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &APIKeyRepository{db: db, cost: cost}
}

// Create mints a new key named name and returns the model plus the
// plaintext key string. The plaintext is never persisted or returned again.
func (r *APIKeyRepository) Create(ctx context.Context, name string) (*APIKeyModel, string, error) {
	prefix, err := randomHex(prefixBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate key prefix: %w", err)
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return nil, "", fmt.Errorf("generate key secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), r.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash key secret: %w", err)
	}

	model := &APIKeyModel{
		ID:        uuid.NewString(),
		Name:      name,
		KeyPrefix: prefix,
		KeyHash:   string(hash),
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return nil, "", fmt.Errorf("save api key: %w", err)
	}

	plaintext := fmt.Sprintf("%s_%s_%s", apiKeySchemePrefix, prefix, secret)
	return model, plaintext, nil
}

// Verify checks a caller-supplied key string against the stored hash for
// its prefix, returning the matching (non-revoked) model on success.
func (r *APIKeyRepository) Verify(ctx context.Context, key string) (*APIKeyModel, error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != apiKeySchemePrefix {
		return nil, ErrAPIKeyNotFound
	}
	prefix, secret := parts[1], parts[2]

	model := new(APIKeyModel)
	err := r.db.NewSelect().Model(model).
		Where("key_prefix = ?", prefix).
		Where("revoked_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(model.KeyHash), []byte(secret)) != nil {
		return nil, ErrAPIKeyNotFound
	}
	return model, nil
}

// Revoke marks the key with the given ID as revoked; it stops verifying immediately.
func (r *APIKeyRepository) Revoke(ctx context.Context, id string) error {
	res, err := r.db.NewUpdate().Model((*APIKeyModel)(nil)).
		Set("revoked_at = current_timestamp").
		Where("id = ?", id).
		Where("revoked_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

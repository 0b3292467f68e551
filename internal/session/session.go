// Package session persists the authentication token pair between runs and
// hands the bearer token to the API client.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/pkg"
)

// Storage keys.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
)

// Entry is one persisted key/value pair.
type Entry struct {
	Key       string `gorm:"primaryKey;column:name;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Entry) TableName() string {
	return "session_entries"
}

// Config configures a Store.
type Config struct {
	// EncryptionKey enables at-rest encryption of stored values when set.
	EncryptionKey string
	Logger        *slog.Logger
}

// Store is a gorm-backed session store. It implements api.TokenSource.
type Store struct {
	db     *gorm.DB
	sealer *sealer
	logger *slog.Logger
	now    func() time.Time
}

var _ api.TokenSource = (*Store)(nil)

// New creates a Store and migrates its table.
func New(ctx context.Context, db *gorm.DB, cfg Config) (*Store, error) {
	if db == nil {
		return nil, errors.New("session: db is nil")
	}
	s, err := newSealer(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate session table: %w", err)
	}
	return &Store{db: db, sealer: s, logger: logger, now: time.Now}, nil
}

// Save stores the token pair atomically. An empty refresh token removes any
// previously stored one.
func (s *Store) Save(ctx context.Context, tokens api.Tokens) error {
	if tokens.Token == "" {
		return domain.NewAppError(domain.CodeValidation, "", errors.New("session: empty token"))
	}
	return pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.put(tx, KeyToken, tokens.Token); err != nil {
			return err
		}
		if tokens.RefreshToken == "" {
			return tx.Delete(&Entry{Key: KeyRefreshToken}).Error
		}
		return s.put(tx, KeyRefreshToken, tokens.RefreshToken)
	})
}

func (s *Store) put(tx *gorm.DB, key, value string) error {
	if s.sealer != nil {
		sealed, err := s.sealer.seal(key, value)
		if err != nil {
			return err
		}
		value = sealed
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: s.now()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Get returns the stored value for key, or "" when nothing is stored.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session %s: %w", key, err)
	}
	if s.sealer == nil {
		return entry.Value, nil
	}
	return s.sealer.open(key, entry.Value)
}

// Clear removes the token pair.
func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("name IN ?", []string{KeyToken, KeyRefreshToken}).Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token implements api.TokenSource. A missing token yields
// domain.ErrUnauthorized and an expired JWT yields domain.ErrSessionExpired.
// Opaque tokens are passed through unchecked.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.Get(ctx, KeyToken)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	if claims, ok := ParseClaims(token); ok && claims.Expired(s.now()) {
		s.logger.DebugContext(ctx, "stored token expired", slog.Time("expires_at", claims.ExpiresAt))
		return "", domain.ErrSessionExpired
	}
	return token, nil
}

// Claims returns the claims of the stored token.
func (s *Store) Claims(ctx context.Context) (Claims, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return Claims{}, err
	}
	claims, _ := ParseClaims(token)
	return claims, nil
}

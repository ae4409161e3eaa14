package services

import (
	"context"
	"fmt"
	"strings"

	localCache "git.solsynth.dev/hypernet/meeting/pkg/internal/cache"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityResolver maps email addresses to account identifiers.
// Emails without a matching account are dropped silently.
type IdentityResolver interface {
	ResolveUserIDs(ctx context.Context, emails []string) ([]string, error)
}

// AccountResolver resolves emails against the local accounts table,
// reading through the shared cache when one is configured.
type AccountResolver struct {
	db    *gorm.DB
	store store.StoreInterface
}

var Identities *AccountResolver

func SetupIdentities() {
	Identities = NewAccountResolver(database.C, localCache.S)
}

func NewAccountResolver(db *gorm.DB, s store.StoreInterface) *AccountResolver {
	return &AccountResolver{db: db, store: s}
}

func GetAccountEmailCacheKey(email string) string {
	return fmt.Sprintf("account-email#%s", email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *AccountResolver) ResolveUserIDs(ctx context.Context, emails []string) ([]string, error) {
	normalized := lo.Uniq(lo.Compact(lo.Map(emails, func(item string, _ int) string {
		return NormalizeEmail(item)
	})))
	if len(normalized) == 0 {
		return nil, nil
	}

	found := make(map[string]string, len(normalized))
	var pending []string
	for _, email := range normalized {
		if id, ok := v.getCached(ctx, email); ok {
			found[email] = id
		} else {
			pending = append(pending, email)
		}
	}

	if len(pending) > 0 {
		var accounts []models.Account
		if err := v.db.WithContext(ctx).
			Where("LOWER(email) IN ?", pending).
			Find(&accounts).Error; err != nil {
			return nil, fmt.Errorf("unable to lookup accounts: %w", err)
		}
		for _, account := range accounts {
			email := NormalizeEmail(account.Email)
			found[email] = account.ID
			v.setCached(ctx, email, account.ID)
		}
	}

	var out []string
	for _, email := range normalized {
		if id, ok := found[email]; ok {
			out = append(out, id)
		}
	}

	return out, nil
}

// SyncAccount upserts the account carried by a verified session. The email
// is taken away from any other account still holding it, and cached
// mappings for the account and for its email are dropped.
func (v *AccountResolver) SyncAccount(ctx context.Context, account models.Account) (models.Account, error) {
	account.Email = NormalizeEmail(account.Email)

	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(account.Email) > 0 {
			if err := tx.Model(&models.Account{}).
				Where("LOWER(email) = ? AND id <> ?", account.Email, account.ID).
				Update("email", "").Error; err != nil {
				return err
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "nick", "email", "updated_at"}),
		}).Create(&account).Error
	})
	if err != nil {
		return account, err
	}

	if v.store != nil {
		marshal := marshaler.New(cache.New[any](v.store))
		if err := marshal.Invalidate(
			ctx,
			store.WithInvalidateTags([]string{fmt.Sprintf("account#%s", account.ID)}),
		); err != nil {
			log.Warn().Err(err).Str("account", account.ID).Msg("Unable to invalidate account cache.")
		}
		if len(account.Email) > 0 {
			if err := v.store.Delete(ctx, GetAccountEmailCacheKey(account.Email)); err != nil {
				log.Warn().Err(err).Str("account", account.ID).Msg("Unable to drop cached email mapping.")
			}
		}
	}

	return account, nil
}

func (v *AccountResolver) GetAccount(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	if err := v.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return account, err
	}
	return account, nil
}

func (v *AccountResolver) getCached(ctx context.Context, email string) (string, bool) {
	if v.store == nil {
		return "", false
	}

	marshal := marshaler.New(cache.New[any](v.store))
	val, err := marshal.Get(ctx, GetAccountEmailCacheKey(email), new(string))
	if err != nil {
		return "", false
	}
	id, ok := val.(*string)
	if !ok || id == nil || len(*id) == 0 {
		return "", false
	}
	return *id, true
}

func (v *AccountResolver) setCached(ctx context.Context, email, id string) {
	if v.store == nil {
		return
	}

	marshal := marshaler.New(cache.New[any](v.store))
	_ = marshal.Set(
		ctx,
		GetAccountEmailCacheKey(email),
		id,
		store.WithTags([]string{"account-identity", fmt.Sprintf("account#%s", id)}),
	)
}

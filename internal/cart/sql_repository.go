package cart

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/artisanmarket/cart-backend/pkg/db"
	"github.com/artisanmarket/cart-backend/pkg/db/models"
	pkgerrors "github.com/artisanmarket/cart-backend/pkg/errors"
)

const sessionKeyConstraint = "session_key"

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SQLRepository stores carts in cart_sessions and cart_line_items.
type SQLRepository struct {
	tx  txRunner
	ttl time.Duration
	now func() time.Time
}

// NewSQLRepository binds the repository to the database client. A ttl of zero
// disables expiry.
func NewSQLRepository(tx txRunner, ttl time.Duration) *SQLRepository {
	return &SQLRepository{tx: tx, ttl: ttl, now: time.Now}
}

// Load returns the session's cart, or nil when it is absent or expired.
func (r *SQLRepository) Load(ctx context.Context, sessionID string) (*State, error) {
	var session models.CartSession
	err := r.tx.DB().WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		Where("session_key = ?", sessionID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if session.ExpiresAt != nil && !session.ExpiresAt.After(r.now()) {
		return nil, nil
	}

	state := State{IsOpen: session.IsOpen, Items: make([]LineItem, 0, len(session.Items))}
	for _, row := range session.Items {
		state.Items = append(state.Items, LineItem{
			ProductID:  row.ProductID,
			Title:      row.Title,
			VendorName: row.VendorName,
			UnitPrice:  row.UnitPrice,
			Quantity:   row.Quantity,
			ImageURL:   row.ImageURL,
		})
	}
	return &state, nil
}

// Save upserts the session row and replaces its items in one transaction.
func (r *SQLRepository) Save(ctx context.Context, sessionID string, state State) error {
	now := r.now()
	expiresAt := r.expiresAt(now)

	return r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var session models.CartSession
		err := tx.Where("session_key = ?", sessionID).First(&session).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			session = models.CartSession{
				SessionKey: sessionID,
				IsOpen:     state.IsOpen,
				ExpiresAt:  expiresAt,
			}
			if err := tx.Create(&session).Error; err != nil {
				if db.IsUniqueViolation(err, sessionKeyConstraint) {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart session created concurrently")
				}
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&models.CartSession{}).
				Where("id = ?", session.ID).
				Updates(map[string]any{
					"is_open":    state.IsOpen,
					"expires_at": expiresAt,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}

		return replaceItems(tx, session, state.Items)
	})
}

// Delete removes the session and its items.
func (r *SQLRepository) Delete(ctx context.Context, sessionID string) error {
	return r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var session models.CartSession
		err := tx.Where("session_key = ?", sessionID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("cart_session_id = ?", session.ID).Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
}

// PurgeExpired deletes sessions whose expiry passed before cutoff and returns
// how many were removed.
func (r *SQLRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		expired := tx.Model(&models.CartSession{}).
			Select("id").
			Where("expires_at IS NOT NULL AND expires_at <= ?", cutoff)
		if err := tx.Where("cart_session_id IN (?)", expired).Delete(&models.CartLineItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("expires_at IS NOT NULL AND expires_at <= ?", cutoff).Delete(&models.CartSession{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	return purged, err
}

func (r *SQLRepository) expiresAt(now time.Time) *time.Time {
	if r.ttl <= 0 {
		return nil
	}
	at := now.Add(r.ttl).UTC()
	return &at
}

func replaceItems(tx *gorm.DB, session models.CartSession, items []LineItem) error {
	if err := tx.Where("cart_session_id = ?", session.ID).Delete(&models.CartLineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.CartLineItem, len(items))
	for i, item := range items {
		rows[i] = models.CartLineItem{
			CartSessionID: session.ID,
			ProductID:     item.ProductID,
			Position:      i,
			Title:         item.Title,
			VendorName:    item.VendorName,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			ImageURL:      item.ImageURL,
		}
	}
	return tx.Create(&rows).Error
}

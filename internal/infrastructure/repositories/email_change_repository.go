package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/infrastructure/database"
)

// EmailChangeRepositoryImpl implements domain.EmailChangeRepository using GORM
type EmailChangeRepositoryImpl struct {
	db *gorm.DB
}

// NewEmailChangeRepository creates a new email change repository
func NewEmailChangeRepository(db *gorm.DB) domain.EmailChangeRepository {
	return &EmailChangeRepositoryImpl{db: db}
}

// Replace removes any request the user already has and stores req.
// Callers run it inside a transaction so the swap is atomic.
func (r *EmailChangeRepositoryImpl) Replace(ctx context.Context, req *domain.EmailChangeRequest) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Where("user_id = ?", req.UserID).Delete(&DBEmailChangeRequest{}).Error; err != nil {
		return err
	}

	row := &DBEmailChangeRequest{
		UserID:      req.UserID,
		OldEmail:    req.OldEmail,
		NewEmail:    req.NewEmail,
		OTPOld:      req.OTPOld,
		OTPNew:      req.OTPNew,
		VerifiedOld: req.VerifiedOld(),
		VerifiedNew: req.VerifiedNew(),
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   req.CreatedAt,
	}
	if err := conn.Omit("User").Create(row).Error; err != nil {
		return err
	}
	req.ID = row.ID
	return nil
}

// FindAwaitingOld locks the user's request whose current address is unconfirmed
func (r *EmailChangeRepositoryImpl) FindAwaitingOld(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error) {
	return r.findLocked(ctx, "user_id = ? AND verified_old = ?", userID, false)
}

// FindAwaitingNew locks the user's request whose new address is unconfirmed
func (r *EmailChangeRepositoryImpl) FindAwaitingNew(ctx context.Context, userID uint) (*domain.EmailChangeRequest, error) {
	return r.findLocked(ctx, "user_id = ? AND verified_new = ?", userID, false)
}

func (r *EmailChangeRepositoryImpl) findLocked(ctx context.Context, query string, args ...interface{}) (*domain.EmailChangeRequest, error) {
	var row DBEmailChangeRequest
	err := database.ForUpdate(database.Conn(ctx, r.db)).Where(query, args...).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoPendingRequest
		}
		return nil, err
	}
	return &domain.EmailChangeRequest{
		ID:        row.ID,
		UserID:    row.UserID,
		OldEmail:  row.OldEmail,
		NewEmail:  row.NewEmail,
		OTPOld:    row.OTPOld,
		OTPNew:    row.OTPNew,
		State:     domain.EmailChangeStateFromFlags(row.VerifiedOld, row.VerifiedNew),
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

// SaveState persists the flags derived from the request's state
func (r *EmailChangeRepositoryImpl) SaveState(ctx context.Context, req *domain.EmailChangeRequest) error {
	res := database.Conn(ctx, r.db).Model(&DBEmailChangeRequest{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
		"verified_old": req.VerifiedOld(),
		"verified_new": req.VerifiedNew(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoPendingRequest
	}
	return nil
}

// Delete implements domain.EmailChangeRepository
func (r *EmailChangeRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return database.Conn(ctx, r.db).Where("id = ?", id).Delete(&DBEmailChangeRequest{}).Error
}

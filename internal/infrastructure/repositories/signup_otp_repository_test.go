package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festoofficial/festo/domain"
)

func newSignupOTP(email, code string, now time.Time) *domain.SignupOTP {
	return &domain.SignupOTP{
		Email:     email,
		Code:      code,
		Name:      "Asha",
		College:   "NIT",
		Role:      domain.RoleParticipant,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestSignupOTPRepositoryImpl_UpsertOverwritesPendingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignupOTPRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Upsert(ctx, newSignupOTP("asha@college.edu", "111111", now)))

	second := newSignupOTP("asha@college.edu", "222222", now.Add(time.Minute))
	second.Name = "Asha K"
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&DBSignupOTP{}).Where("email = ?", "asha@college.edu").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err := repo.FindUnverified(ctx, "asha@college.edu", "111111")
	assert.ErrorIs(t, err, domain.ErrOTPInvalidOrExpired, "overwritten code must not verify")

	otp, err := repo.FindUnverified(ctx, "asha@college.edu", "222222")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", otp.Name)
}

func TestSignupOTPRepositoryImpl_MarkVerified(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignupOTPRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, newSignupOTP("asha@college.edu", "123456", time.Now())))
	otp, err := repo.FindUnverified(ctx, "asha@college.edu", "123456")
	require.NoError(t, err)

	require.NoError(t, repo.MarkVerified(ctx, otp.ID))
	assert.ErrorIs(t, repo.MarkVerified(ctx, otp.ID), domain.ErrOTPInvalidOrExpired)

	_, err = repo.FindUnverified(ctx, "asha@college.edu", "123456")
	assert.ErrorIs(t, err, domain.ErrOTPInvalidOrExpired)

	verified, err := repo.FindVerified(ctx, "asha@college.edu")
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, domain.RoleParticipant, verified.Role)

	// a fresh send after verification gets its own pending row
	require.NoError(t, repo.Upsert(ctx, newSignupOTP("asha@college.edu", "654321", time.Now())))
	_, err = repo.FindUnverified(ctx, "asha@college.edu", "654321")
	assert.NoError(t, err)
}

func TestSignupOTPRepositoryImpl_Deletes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSignupOTPRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, newSignupOTP("asha@college.edu", "123456", time.Now())))
	require.NoError(t, repo.DeleteUnverified(ctx, "asha@college.edu"))
	_, err := repo.FindUnverified(ctx, "asha@college.edu", "123456")
	assert.ErrorIs(t, err, domain.ErrOTPInvalidOrExpired)

	require.NoError(t, repo.Upsert(ctx, newSignupOTP("ravi@college.edu", "000001", time.Now())))
	otp, err := repo.FindUnverified(ctx, "ravi@college.edu", "000001")
	require.NoError(t, err)
	require.NoError(t, repo.MarkVerified(ctx, otp.ID))
	require.NoError(t, repo.Upsert(ctx, newSignupOTP("ravi@college.edu", "000002", time.Now())))

	require.NoError(t, repo.DeleteVerified(ctx, "ravi@college.edu"))
	_, err = repo.FindVerified(ctx, "ravi@college.edu")
	assert.ErrorIs(t, err, domain.ErrSignupNotVerified)

	require.NoError(t, repo.DeleteByEmail(ctx, "ravi@college.edu"))
	var count int64
	require.NoError(t, db.Model(&DBSignupOTP{}).Count(&count).Error)
	assert.Zero(t, count)
}

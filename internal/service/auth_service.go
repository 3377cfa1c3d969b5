package service

import (
	"context"
	"fmt"
	"time"

	"mutual-credit-ledger/internal/core/domain"
	"mutual-credit-ledger/internal/core/ports"
	"mutual-credit-ledger/pkg/apperror"
)

// Default permission level for self-registered accounts.
const defaultPermission = 1

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new account with a zero balance and zero traffic
// counters. Account ids are derived from the registration time, so they
// are stable across exports and sort by age.
func (s *AuthServiceImpl) Register(ctx context.Context, name, password string) (*domain.Account, error) {
	existing, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check name: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrNameTaken()
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           now.Unix(),
		Name:         name,
		Balance:      0,
		Received:     0,
		Sent:         0,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		Permission:   defaultPermission,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	return account, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, name, password string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.ID, account.Name)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

// ChangePassword replaces the account's credential after verifying the
// current one.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return apperror.ErrAccountNotFound(accountID)
	}

	valid, err := s.hashSvc.Verify(oldPassword, account.PasswordHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return apperror.ErrWrongPassword()
	}

	newHash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
		return apperror.InternalError(fmt.Errorf("update password: %w", err))
	}

	return nil
}

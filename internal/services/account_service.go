package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memoria/internal/models/db_models"
	"memoria/internal/models/request_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/memcache"
	"memoria/pkg/utils"
)

const resetTokenTTL = 30 * time.Minute

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error)
	GetProfile(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, request request_models.UpdateProfileRequest) (*response_models.AccountResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	jwt         *utils.JWTManager
	tokens      memcache.ResetTokenStore
	mailer      IMailService
	jwtTTL      time.Duration
	log         *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	jwt *utils.JWTManager,
	jwtTTL time.Duration,
	tokens memcache.ResetTokenStore,
	mailer IMailService,
	log *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		jwt:         jwt,
		jwtTTL:      jwtTTL,
		tokens:      tokens,
		mailer:      mailer,
		log:         log,
	}
}

func toAccountResponse(a *db_models.Account) *response_models.AccountResponse {
	return &response_models.AccountResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := a.jwt.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	a.log.Debug("login completed",
		zap.String("account_id", account.ID.String()),
		zap.Duration("took", time.Since(startTime)))

	return &response_models.AccountLoginResponse{
		Token:     token,
		ExpiresIn: int64(a.jwtTTL.Seconds()),
	}, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error) {
	email := strings.TrimSpace(request.Email)

	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:         strings.TrimSpace(request.DisplayName),
		FirstName:    strings.TrimSpace(request.FirstName),
		LastName:     strings.TrimSpace(request.LastName),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         db_models.RoleUser,
	}

	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toAccountResponse(newAccount), nil
}

func (a *AccountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	return toAccountResponse(account), nil
}

func (a *AccountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, request request_models.UpdateProfileRequest) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if email := strings.TrimSpace(request.Email); email != "" && !strings.EqualFold(email, account.Email) {
		other, err := a.accountRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if other != nil {
			return nil, utils.ErrEmailAlreadyExists
		}
		account.Email = email
	}
	if name := strings.TrimSpace(request.DisplayName); name != "" {
		account.Name = name
	}
	if request.FirstName != "" {
		account.FirstName = strings.TrimSpace(request.FirstName)
	}
	if request.LastName != "" {
		account.LastName = strings.TrimSpace(request.LastName)
	}

	if err := a.accountRepo.Update(ctx, account); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toAccountResponse(account), nil
}

// ForgotPassword never reports whether the email belongs to an account.
func (a *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		a.log.Info("password reset requested for unknown email")
		return nil
	}

	token, err := a.tokens.Issue(account.Email, resetTokenTTL)
	if err != nil {
		a.log.Error("reset token issue failed", zap.Error(err))
		return nil
	}
	if err := a.mailer.SendMailToResetPassword(account.Email, token); err != nil {
		a.log.Error("reset email failed",
			zap.String("account_id", account.ID.String()),
			zap.Error(err))
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ForgotPasswordRequest) error {
	email := a.tokens.Consume(request.Token)
	if email == "" || !strings.EqualFold(email, request.Email) {
		return utils.NewValidationError("token", "reset link is invalid or has expired")
	}

	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return utils.ErrDatabaseError
	}
	account.PasswordHash = hashedPassword
	if err := a.accountRepo.Update(ctx, account); err != nil {
		return utils.ErrDatabaseError
	}
	a.log.Info("password reset", zap.String("account_id", account.ID.String()))
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openchain-academy/academy-backend/internal/logger"
	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
	"github.com/openchain-academy/academy-backend/internal/repos"
	"github.com/openchain-academy/academy-backend/internal/requestdata"
	"github.com/openchain-academy/academy-backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given: %w", pkgerrors.ErrInvalidArgument)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	user.WalletAddress = strings.TrimSpace(user.WalletAddress)
	if user.Email == "" {
		return fmt.Errorf("an email is required to register: %w", pkgerrors.ErrInvalidArgument)
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register: %w", pkgerrors.ErrInvalidArgument)
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check user email: %w", err)
	}
	if exists {
		return fmt.Errorf("email is already in use: %w", pkgerrors.ErrInvalidArgument)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password required: %w", pkgerrors.ErrInvalidArgument)
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password: %w", pkgerrors.ErrUnauthorized)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password: %w", pkgerrors.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
		if err != nil {
			return fmt.Errorf("failed to check user tokens: %w", err)
		}
		expired := make([]uuid.UUID, 0, len(found))
		for _, tok := range found {
			if tok != nil && tok.ExpiresAt.Before(time.Now()) {
				expired = append(expired, tok.ID)
			}
		}
		if len(expired) > 0 {
			if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, expired); err != nil {
				return fmt.Errorf("failed to delete expired user tokens: %w", err)
			}
		}

		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generate access token error: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); err != nil {
			as.log.Warn("Create User Token Error", "error", err)
			return fmt.Errorf("create user token error: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return "", "", fmt.Errorf("no request data found in context: %w", pkgerrors.ErrUnauthorized)
	}
	if rd.RefreshToken == "" {
		return "", "", fmt.Errorf("refresh token not found in request data: %w", pkgerrors.ErrUnauthorized)
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil || len(users) == 0 {
		return "", "", fmt.Errorf("user not found: %w", pkgerrors.ErrUnauthorized)
	}
	user := users[0]

	var accessToken, refreshToken string
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := as.userTokenRepo.GetByRefreshToken(ctx, tx, rd.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to look up refresh token: %w", err)
		}
		if row == nil || row.UserID != user.ID {
			return fmt.Errorf("unknown refresh token: %w", pkgerrors.ErrUnauthorized)
		}
		if row.ExpiresAt.Before(time.Now()) {
			return fmt.Errorf("refresh token expired: %w", pkgerrors.ErrUnauthorized)
		}
		if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{row.ID}); err != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", err)
		}

		tok, err := as.generateAccessToken(user)
		if err != nil {
			return fmt.Errorf("generate access token error: %w", err)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{&userToken}); err != nil {
			return fmt.Errorf("create user token error: %w", err)
		}
		return nil
	}); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("no request data found in context: %w", pkgerrors.ErrUnauthorized)
	}
	return as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token: %w", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject: %w", pkgerrors.ErrUnauthorized)
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}
	// Resolve the paired refresh token so refresh/logout have it available.
	rows, err := as.userTokenRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
	if err == nil {
		for _, row := range rows {
			if row != nil && row.AccessToken == tokenString {
				rd.RefreshToken = row.RefreshToken
				break
			}
		}
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		ID:        uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

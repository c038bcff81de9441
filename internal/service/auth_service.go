package service

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/repository"
	"alcyxob/dieta-core/internal/result"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// AuthService covers registration, login and the credential token flows.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (result.Result[*AuthResponse], error)
	Login(ctx context.Context, in LoginInput) (result.Result[*AuthResponse], error)
	GenerateEmailConfirmationToken(ctx context.Context, userID int64) (result.Result[string], error)
	ConfirmEmail(ctx context.Context, userID int64, token string) (result.Result[bool], error)
	ForgotPassword(ctx context.Context, email string) (result.Result[string], error)
	ResetPassword(ctx context.Context, in ResetPasswordInput) (result.Result[bool], error)
	Me(ctx context.Context) (result.Result[*UserResponse], error)
}

type authService struct {
	ids    identity.Provider
	tokens *auth.TokenManager
	tx     repository.TxManager
	log    *zap.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(ids identity.Provider, tokens *auth.TokenManager, tx repository.TxManager, log *zap.Logger) AuthService {
	return &authService{ids: ids, tokens: tokens, tx: tx, log: log}
}

// Register creates a Client account with an unconfirmed email and signs
// the caller in. The confirmation token is issued but not returned; the
// caller requests one through GenerateEmailConfirmationToken.
func (s *authService) Register(ctx context.Context, in RegisterInput) (result.Result[*AuthResponse], error) {
	user := &domain.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// 1. Create the account (password policy and email uniqueness)
		if err := s.ids.CreateUser(ctx, user, in.Password); err != nil {
			return err
		}
		// 2. Grant the Client role
		if err := s.ids.AddToRole(ctx, user, domain.RoleClient); err != nil {
			return fmt.Errorf("add client role: %w", err)
		}
		// 3. Issue the confirmation token
		if _, err := s.ids.GenerateEmailConfirmationToken(ctx, user); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return result.Propagate[*AuthResponse](rejection(err))
	}
	s.log.Info("user registered", zap.Int64("userID", user.ID))

	resp, err := s.authResponse(user)
	if err != nil {
		return result.Result[*AuthResponse]{}, err
	}
	return result.OK(resp, "User registered successfully."), nil
}

// Login checks the credentials and issues an access token. An unknown
// email is NotFound, a wrong password BadRequest, both with the same message.
func (s *authService) Login(ctx context.Context, in LoginInput) (result.Result[*AuthResponse], error) {
	user, err := s.ids.FindByEmail(ctx, in.Email)
	if err != nil {
		return result.Propagate[*AuthResponse](lookup(err, MsgInvalidCredentials, "user"))
	}
	if !s.ids.IsEmailConfirmed(user) {
		return result.Failure[*AuthResponse](result.BadRequest, MsgEmailNotConfirmed), nil
	}
	if !s.ids.CheckPassword(user, in.Password) {
		s.log.Info("login rejected", zap.Int64("userID", user.ID))
		return result.Failure[*AuthResponse](result.BadRequest, MsgInvalidCredentials), nil
	}

	resp, err := s.authResponse(user)
	if err != nil {
		return result.Result[*AuthResponse]{}, err
	}
	return result.OK(resp, "Login successful."), nil
}

func (s *authService) GenerateEmailConfirmationToken(ctx context.Context, userID int64) (result.Result[string], error) {
	user, err := s.ids.FindByID(ctx, userID)
	if err != nil {
		return result.Propagate[string](lookup(err, MsgUserNotFound, "user"))
	}
	token, err := s.ids.GenerateEmailConfirmationToken(ctx, user)
	if err != nil {
		return fail[string](err, "generate confirmation token")
	}
	return result.OK(token, "Email confirmation token generated successfully."), nil
}

func (s *authService) ConfirmEmail(ctx context.Context, userID int64, token string) (result.Result[bool], error) {
	user, err := s.ids.FindByID(ctx, userID)
	if err != nil {
		return result.Propagate[bool](lookup(err, MsgUserNotFound, "user"))
	}
	if err := s.ids.ConfirmEmail(ctx, user, token); err != nil {
		return result.Propagate[bool](rejection(err))
	}
	return result.OK(true, "Email confirmed successfully."), nil
}

// ForgotPassword issues a reset token. Without a mail sender the token is
// returned to the caller.
func (s *authService) ForgotPassword(ctx context.Context, email string) (result.Result[string], error) {
	user, err := s.ids.FindByEmail(ctx, email)
	if err != nil {
		return result.Propagate[string](lookup(err, MsgUserNotFound, "user"))
	}
	token, err := s.ids.GeneratePasswordResetToken(ctx, user)
	if err != nil {
		return fail[string](err, "generate reset token")
	}
	return result.OK(token, "Password reset token generated successfully."), nil
}

func (s *authService) ResetPassword(ctx context.Context, in ResetPasswordInput) (result.Result[bool], error) {
	user, err := s.ids.FindByEmail(ctx, in.Email)
	if err != nil {
		return result.Propagate[bool](lookup(err, MsgUserNotFound, "user"))
	}
	if err := s.ids.ResetPassword(ctx, user, in.Token, in.NewPassword); err != nil {
		return result.Propagate[bool](rejection(err))
	}
	s.log.Info("password reset", zap.Int64("userID", user.ID))
	return result.OK(true, "Password reset successfully."), nil
}

// Me returns the authenticated caller's account.
func (s *authService) Me(ctx context.Context) (result.Result[*UserResponse], error) {
	userID, err := auth.CurrentUserID(ctx)
	if err != nil {
		return result.Propagate[*UserResponse](err)
	}
	user, err := s.ids.FindByID(ctx, userID)
	if err != nil {
		return result.Propagate[*UserResponse](lookup(err, MsgUserNotFound, "user"))
	}
	return result.OK(toUserResponse(user), "User retrieved successfully."), nil
}

func (s *authService) authResponse(user *domain.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.PrimaryRole(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func toUserResponse(u *domain.User) *UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []domain.Role{}
	}
	return &UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		EmailConfirmed: u.EmailConfirmed,
		Roles:          roles,
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
	"github.com/jhoicas/inventario-admin/pkg/jwt"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Credentials resultado de un login en el backend.
type Credentials struct {
	AccessToken string
	User        entity.User
}

// UserGateway endpoints /users del backend.
type UserGateway interface {
	Login(ctx context.Context, email, password string) (Credentials, error)
	Register(ctx context.Context, in dto.RegisterRequest) error
	ResetPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ChangePassword(ctx context.Context, in dto.ChangePasswordRequest) error
	ChangePasswordSetting(ctx context.Context, token string, in dto.PasswordSettingRequest) error
	ViewProfile(ctx context.Context, token string) (entity.User, error)
	UpdateProfile(ctx context.Context, token string, in dto.UpdateProfileRequest) (entity.User, error)
	ManagersAvailable(ctx context.Context, token string) ([]entity.User, error)
	StaffAvailable(ctx context.Context, token string) ([]entity.User, error)
	List(ctx context.Context, token string) ([]entity.User, error)
}

// AuthUseCase casos de uso de autenticación y sesión de la consola.
type AuthUseCase struct {
	users    UserGateway
	sessions repository.SessionRepository
	registry *state.Registry
	jwtCfg   JWTConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users UserGateway, sessions repository.SessionRepository, registry *state.Registry, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if registry == nil {
		registry = state.NewRegistry()
	}
	return &AuthUseCase{
		users:    users,
		sessions: sessions,
		registry: registry,
		jwtCfg:   jwtCfg,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

// Login autentica contra el backend, persiste la sesión (usuario + access token), inicializa el
// estado de la sesión y devuelve el token de la consola.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	creds, err := uc.users.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("login: el backend no devolvió access token")
	}
	now := uc.now()
	sess := &entity.Session{
		ID:          uuid.NewString(),
		User:        creds.User,
		AccessToken: creds.AccessToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
	}
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, sess.ID, sess.User.ID, sess.User.NormalizedRole(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		_ = uc.sessions.Delete(ctx, sess.ID)
		return nil, err
	}
	uc.registry.Hydrate(sess.ID)
	uc.log.Info().Str("user_id", sess.User.ID).Str("role", sess.User.NormalizedRole()).Msg("inicio de sesión")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      ToUserResponse(sess.User),
	}, nil
}

// Resolve valida el token de la consola y devuelve la sesión persistida. Tras un reinicio del
// proceso el estado en memoria se vuelve a crear aquí; si la sesión ya venció, se descarta.
func (uc *AuthUseCase) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	claims, err := jwt.Parse(uc.jwtCfg.Secret, token)
	if err != nil {
		return nil, domain.ErrSessionExpired
	}
	sess, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			uc.registry.Teardown(claims.SessionID)
		}
		return nil, err
	}
	uc.registry.Hydrate(sess.ID)
	return sess, nil
}

// Logout elimina la sesión persistida y su estado.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	uc.registry.Teardown(sessionID)
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("eliminar sesión: %w", err)
	}
	return nil
}

// Profile obtiene el perfil del backend y actualiza la sesión. Si falla, la sesión se elimina y el
// cliente debe volver a iniciar sesión.
func (uc *AuthUseCase) Profile(ctx context.Context, sess *entity.Session) (*dto.UserResponse, error) {
	user, err := uc.users.ViewProfile(ctx, sess.AccessToken)
	if err != nil {
		uc.log.Warn().Err(err).Str("session_id", sess.ID).Msg("perfil no disponible, cerrando sesión")
		if lerr := uc.Logout(ctx, sess.ID); lerr != nil {
			uc.log.Error().Err(lerr).Str("session_id", sess.ID).Msg("cerrar sesión tras fallo de perfil")
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionExpired, err.Error())
	}
	sess.User = mergeUser(sess.User, user)
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	out := ToUserResponse(sess.User)
	return &out, nil
}

// UpdateProfile envía los cambios de perfil y refresca el usuario de la sesión.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, sess *entity.Session, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.users.UpdateProfile(ctx, sess.AccessToken, in)
	if err != nil {
		return nil, err
	}
	sess.User = mergeUser(sess.User, user)
	if err := uc.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	out := ToUserResponse(sess.User)
	return &out, nil
}

// ChangePasswordSetting cambio de contraseña con sesión iniciada.
func (uc *AuthUseCase) ChangePasswordSetting(ctx context.Context, sess *entity.Session, in dto.PasswordSettingRequest) error {
	return uc.users.ChangePasswordSetting(ctx, sess.AccessToken, in)
}

// Register alta de usuario (público).
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) error {
	return uc.users.Register(ctx, in)
}

// ResetPassword solicita el envío del OTP.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	return uc.users.ResetPassword(ctx, in.Email)
}

// VerifyOTP verifica el código recibido.
func (uc *AuthUseCase) VerifyOTP(ctx context.Context, in dto.VerifyOTPRequest) error {
	return uc.users.VerifyOTP(ctx, in.Email, in.OTP)
}

// ChangePassword fija la nueva contraseña del flujo de recuperación.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, in dto.ChangePasswordRequest) error {
	return uc.users.ChangePassword(ctx, in)
}

// UserScope listado de usuarios a consultar.
type UserScope string

const (
	ScopeAll      UserScope = "all"
	ScopeManagers UserScope = "managers"
	ScopeStaff    UserScope = "staff"
)

// Users lista usuarios del backend según el alcance.
func (uc *AuthUseCase) Users(ctx context.Context, sess *entity.Session, scope UserScope) ([]dto.UserResponse, error) {
	var (
		users []entity.User
		err   error
	)
	switch scope {
	case ScopeManagers:
		users, err = uc.users.ManagersAvailable(ctx, sess.AccessToken)
	case ScopeStaff:
		users, err = uc.users.StaffAvailable(ctx, sess.AccessToken)
	case ScopeAll, "":
		users, err = uc.users.List(ctx, sess.AccessToken)
	default:
		return nil, errors.New("alcance de usuarios desconocido: " + string(scope))
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

// mergeUser conserva ID y rol de la sesión si el backend los omite en la respuesta.
func mergeUser(current, fresh entity.User) entity.User {
	if fresh.ID == "" {
		fresh.ID = current.ID
	}
	if fresh.Role == "" {
		fresh.Role = current.Role
	}
	if fresh.Email == "" {
		fresh.Email = current.Email
	}
	return fresh
}

// ToUserResponse convierte el usuario de la sesión.
func ToUserResponse(u entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.DisplayName(),
		Phone:    u.Phone,
		Address:  u.Address,
		Role:     u.NormalizedRole(),
		IsActive: u.IsActive,
		Reviewer: u.IsReviewer(),
	}
}

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jhoicas/inventario-admin/internal/application/auth"
	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
)

var _ auth.UserGateway = (*UserService)(nil)

// UserService endpoints /users del backend.
type UserService struct {
	c *Client
}

// NewUserService construye el servicio.
func NewUserService(c *Client) *UserService {
	return &UserService{c: c}
}

// userRecord usuario del backend; el id puede venir como id o _id.
type userRecord struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

func (r userRecord) toEntity() entity.User {
	u := entity.User{
		ID:       r.ID,
		Email:    r.Email,
		FullName: r.FullName,
		Phone:    r.Phone,
		Address:  r.Address,
		Role:     strings.ToUpper(strings.TrimSpace(r.Role)),
		IsActive: r.IsActive == nil || *r.IsActive,
	}
	if u.ID == "" {
		u.ID = r.MongoID
	}
	if u.FullName == "" {
		u.FullName = r.Name
	}
	return u
}

// loginRecord respuesta de /users/login. El token viaja como accessToken o token.
type loginRecord struct {
	AccessToken string      `json:"accessToken"`
	Token       string      `json:"token"`
	User        *userRecord `json:"user"`
}

// Login POST /users/login.
func (s *UserService) Login(ctx context.Context, email, password string) (auth.Credentials, error) {
	var raw json.RawMessage
	body := map[string]string{"email": email, "password": password}
	if err := s.c.Do(ctx, http.MethodPost, "/users/login", nil, "", body, &raw); err != nil {
		return auth.Credentials{}, err
	}
	var rec loginRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return auth.Credentials{}, err
	}
	var user userRecord
	if rec.User != nil {
		user = *rec.User
	} else if err := json.Unmarshal(raw, &user); err != nil {
		return auth.Credentials{}, err
	}
	token := rec.AccessToken
	if token == "" {
		token = rec.Token
	}
	return auth.Credentials{AccessToken: token, User: user.toEntity()}, nil
}

// Register POST /users/register.
func (s *UserService) Register(ctx context.Context, in dto.RegisterRequest) error {
	body := map[string]string{
		"fullName": in.FullName,
		"email":    in.Email,
		"password": in.Password,
		"phone":    in.Phone,
		"address":  in.Address,
	}
	return s.c.Do(ctx, http.MethodPost, "/users/register", nil, "", body, nil)
}

// ResetPassword POST /users/reset-password: el backend envía un OTP al correo.
func (s *UserService) ResetPassword(ctx context.Context, email string) error {
	return s.c.Do(ctx, http.MethodPost, "/users/reset-password", nil, "", map[string]string{"email": email}, nil)
}

// VerifyOTP POST /users/verify-otp.
func (s *UserService) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return s.c.Do(ctx, http.MethodPost, "/users/verify-otp", nil, "", body, nil)
}

// ChangePassword POST /users/change-password (recuperación con OTP).
func (s *UserService) ChangePassword(ctx context.Context, in dto.ChangePasswordRequest) error {
	body := map[string]string{"email": in.Email, "otp": in.OTP, "newPassword": in.NewPassword}
	return s.c.Do(ctx, http.MethodPost, "/users/change-password", nil, "", body, nil)
}

// ChangePasswordSetting POST /users/change-password-setting (con sesión).
func (s *UserService) ChangePasswordSetting(ctx context.Context, token string, in dto.PasswordSettingRequest) error {
	body := map[string]string{"oldPassword": in.OldPassword, "newPassword": in.NewPassword}
	return s.c.Do(ctx, http.MethodPost, "/users/change-password-setting", nil, token, body, nil)
}

// ViewProfile GET /users/view-profile.
func (s *UserService) ViewProfile(ctx context.Context, token string) (entity.User, error) {
	var rec userRecord
	if err := s.c.Do(ctx, http.MethodGet, "/users/view-profile", nil, token, nil, &rec); err != nil {
		return entity.User{}, err
	}
	return rec.toEntity(), nil
}

// UpdateProfile PUT /users/update-profile.
func (s *UserService) UpdateProfile(ctx context.Context, token string, in dto.UpdateProfileRequest) (entity.User, error) {
	var rec userRecord
	body := map[string]string{"fullName": in.FullName, "phone": in.Phone, "address": in.Address}
	if err := s.c.Do(ctx, http.MethodPut, "/users/update-profile", nil, token, body, &rec); err != nil {
		return entity.User{}, err
	}
	if rec.FullName == "" && rec.Name == "" {
		// Algunas versiones del backend solo confirman con un mensaje.
		rec.FullName, rec.Phone, rec.Address = in.FullName, in.Phone, in.Address
	}
	return rec.toEntity(), nil
}

// ManagersAvailable GET /users/get-manager-available.
func (s *UserService) ManagersAvailable(ctx context.Context, token string) ([]entity.User, error) {
	return s.list(ctx, token, "/users/get-manager-available")
}

// StaffAvailable GET /users/get-staff-available.
func (s *UserService) StaffAvailable(ctx context.Context, token string) ([]entity.User, error) {
	return s.list(ctx, token, "/users/get-staff-available")
}

// List GET /users/.
func (s *UserService) List(ctx context.Context, token string) ([]entity.User, error) {
	return s.list(ctx, token, "/users/")
}

func (s *UserService) list(ctx context.Context, token, path string) ([]entity.User, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, path, nil, token, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage(raw)
	if err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(page.Items))
	for _, item := range page.Items {
		var rec userRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec.toEntity())
	}
	return out, nil
}

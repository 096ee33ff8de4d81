package dto

import "time"

// LoginRequest credenciales del formulario de ingreso.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest alta de usuario. El rol lo asigna el backend.
type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required,max=120"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Address         string `json:"address" validate:"omitempty,max=200"`
}

// ResetPasswordRequest solicita el envío de un código OTP al correo.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest verifica el código recibido por correo.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,otp"`
}

// ChangePasswordRequest fija una nueva contraseña tras verificar el OTP (flujo "olvidé mi contraseña").
type ChangePasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,otp"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// PasswordSettingRequest cambio de contraseña de un usuario con sesión.
type PasswordSettingRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest datos editables del perfil.
type UpdateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=200"`
}

// UserResponse usuario tal como lo ve la consola.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
	Reviewer bool   `json:"reviewer"`
}

// LoginResponse token de sesión de la consola y usuario autenticado.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// NavigationResponse decisión de la compuerta de rutas para una ruta del cliente.
type NavigationResponse struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

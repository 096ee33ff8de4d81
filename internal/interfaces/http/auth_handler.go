package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/auth"
	"github.com/jhoicas/inventario-admin/internal/application/dto"
)

// AuthHandler maneja login, registro, recuperación de contraseña y perfil.
type AuthHandler struct {
	uc           *auth.AuthUseCase
	cookieName   string
	secureCookie bool
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{uc: uc, cookieName: cookieName, secureCookie: secureCookie}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Autentica contra el backend y abre una sesión de la consola. El token se devuelve en el cuerpo y en una cookie HttpOnly.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if h.cookieName != "" {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookieName,
			Value:    out.Token,
			Path:     "/",
			Expires:  out.ExpiresAt,
			HTTPOnly: true,
			Secure:   h.secureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MessageResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := GetSession(c)
	if err := h.uc.Logout(c.UserContext(), sess.ID); err != nil {
		return writeError(c, err)
	}
	if h.cookieName != "" {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   h.secureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.JSON(dto.MessageResponse{Message: "sesión cerrada"})
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "datos del usuario"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.uc.Register(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "usuario registrado"})
}

// ResetPassword godoc
// @Summary      Solicitar código de recuperación
// @Description  El backend envía un código OTP al correo indicado.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "email"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.uc.ResetPassword(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "código enviado"})
}

// VerifyOTP godoc
// @Summary      Verificar código OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyOTPRequest  true  "email, otp"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var in dto.VerifyOTPRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.uc.VerifyOTP(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "código verificado"})
}

// ChangePassword godoc
// @Summary      Fijar nueva contraseña (recuperación)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePasswordRequest  true  "email, otp, nueva contraseña"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.uc.ChangePassword(c.UserContext(), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

// Me godoc
// @Summary      Perfil del usuario
// @Description  Consulta el perfil en el backend. Si falla, la sesión se cierra y se responde 401.
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Profile(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateMe godoc
// @Summary      Actualizar perfil
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateProfileRequest  true  "nombre, teléfono, dirección"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/me [put]
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var in dto.UpdateProfileRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateProfile(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeMyPassword godoc
// @Summary      Cambiar contraseña (con sesión)
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PasswordSettingRequest  true  "contraseña actual y nueva"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/me/password [post]
func (h *AuthHandler) ChangeMyPassword(c *fiber.Ctx) error {
	var in dto.PasswordSettingRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	if err := h.uc.ChangePasswordSetting(c.UserContext(), GetSession(c), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}

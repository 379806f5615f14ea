package http

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

const msgInvalidToken = "Token no válido"

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

type createAccountRequest struct {
	Name     string `json:"name" binding:"required,notblank" msg:"El nombre no puede ir vacio"`
	Email    string `json:"email" binding:"required,email" msg:"E-mail no válido"`
	Password string `json:"password" binding:"required,min=8" msg:"El password es muy corto, mínimo 8 caracteres"`
}

type tokenRequest struct {
	Token string `json:"token" binding:"required,len=6,numeric" msg:"Token no válido"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"E-mail no válido"`
	Password string `json:"password" binding:"required" msg:"El password no puede ir vacio"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email" msg:"E-mail no válido"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8" msg:"El password es muy corto, mínimo 8 caracteres"`
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required,notblank" msg:"El nombre no puede ir vacio"`
	Email string `json:"email" binding:"required,email" msg:"E-mail no válido"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required" msg:"El password actual no puede ir vacio"`
	Password        string `json:"password" binding:"required,min=8" msg:"El password es muy corto, mínimo 8 caracteres"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) createAccount(c *gin.Context) {
	var req createAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, "Cuenta creada correctamente")
}

func (h *Handler) confirmAccount(c *gin.Context) {
	var req tokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ConfirmAccount(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Cuenta confirmada correctamente")
}

func (h *Handler) resendConfirmation(c *gin.Context) {
	var req emailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Revisa tu email para confirmar tu cuenta")
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req emailRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Revisa tu email para instrucciones")
}

func (h *Handler) validateToken(c *gin.Context) {
	var req tokenRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ValidateResetToken(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Token válido, asigna un nuevo password")
}

func (h *Handler) resetPassword(c *gin.Context) {
	token := c.Param("token")
	if !codePattern.MatchString(token) {
		respondInvalid(c, []fieldError{{Field: "token", Msg: msgInvalidToken}})
		return
	}

	var req resetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), token, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "El password se modificó correctamente")
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), scopeOf(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := h.accounts.UpdateProfile(c.Request.Context(), scopeOf(c).UserID, req.Name, req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "Perfil actualizado correctamente")
}

func (h *Handler) updatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), scopeOf(c).UserID, req.CurrentPassword, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, "El password se modificó correctamente")
}

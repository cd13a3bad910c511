package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/media/sniffer"
	"accountsvc/internal/middleware"
	"accountsvc/internal/models"
	"accountsvc/internal/service"
)

const msgInvalidBody = "Invalid request body"

type messageResponse struct {
	Message string `json:"message"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Photo    string `json:"photo"`
	Bio      string `json:"bio"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Photo:    req.Photo,
		Bio:      req.Bio,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.sendAuthResponse(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.sendAuthResponse(c, http.StatusOK, result)
}

// Logout only clears the cookie. The token itself stays valid until it
// expires.
func (h HandlerSet) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h HandlerSet) LoginStatus(c *gin.Context) {
	token := middleware.SessionToken(c, h.cfg.Security.CookieName)
	c.JSON(http.StatusOK, h.auth.LoginStatus(token))
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
	Bio   *string `json:"bio"`
	Phone *string `json:"phone"`
}

func (h HandlerSet) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.UserID(c), models.UserPatch{
		Name:  req.Name,
		Photo: req.Photo,
		Bio:   req.Bio,
		Phone: req.Phone,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, withPhone(user))
}

// changePasswordRequest takes the new password as "password", as the web
// client sends it, or as "newPassword".
type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	newPassword := req.NewPassword
	if newPassword == "" {
		newPassword = req.Password
	}

	if err := h.auth.ChangePassword(c.Request.Context(), middleware.UserID(c), service.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: newPassword,
	}); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.reset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
}

type resetPasswordRequest struct {
	Password   string `json:"password"`
	ResetToken string `json:"resetToken"`
}

// ResetPassword serves both PUT /resetpassword/:resetToken and PUT
// /resetpassword with the secret in the body. The path wins.
func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	secret := c.Param("resetToken")
	if secret == "" {
		secret = req.ResetToken
	}

	if err := h.reset.ResetPassword(c.Request.Context(), secret, req.Password); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

const uploadOverhead = 1 << 20

func (h HandlerSet) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Storage.MaxAvatarSize+uploadOverhead)

	input := service.AvatarInput{}
	if header, err := c.FormFile("photo"); err == nil {
		file, err := header.Open()
		if err != nil {
			h.writeError(c, err)
			return
		}
		defer file.Close()
		input.File = file
		input.DeclaredType = sniffer.MimeTypeFromPart(header.Header)
	} else if !errors.Is(err, http.ErrMissingFile) {
		badRequest(c, msgInvalidBody)
		return
	}

	user, err := h.avatar.Upload(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, withPhone(user))
}

func withPhone(user models.User) models.PublicProfile {
	resp := user.Profile()
	resp.Phone = user.Phone
	return resp
}

func (h HandlerSet) sendAuthResponse(c *gin.Context, status int, result service.AuthResult) {
	h.setSessionCookie(c, result.Token, result.ExpiresAt)

	resp := result.User.Profile()
	resp.Token = result.Token
	c.JSON(status, resp)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cfg.Security.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cfg.Security.CookieDomain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Security.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cfg.Security.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.Security.CookieDomain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Security.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

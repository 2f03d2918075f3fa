package public

import (
	"errors"
	"time"

	"github.com/tourmall-next/internal/http/response"
	"github.com/tourmall-next/internal/models"
	"github.com/tourmall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 用户注册请求
type UserRegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Username    string `json:"username"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role"`
	Nationality string `json:"nationality"`
	DateOfBirth string `json:"date_of_birth"`
}

// UserLoginRequest 用户登录请求
type UserLoginRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Password    string `json:"password" binding:"required"`
	RememberMe  bool   `json:"remember_me"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// UserProfileResponse 用户信息响应
type UserProfileResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Nationality string     `json:"nationality"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func userProfileResponse(user *models.User) UserProfileResponse {
	return UserProfileResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		Role:        user.Role,
		Status:      user.Status,
		Nationality: user.Nationality,
		DateOfBirth: user.DateOfBirth,
		CreatedAt:   user.CreatedAt,
	}
}

func parseDateOnly(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	dateOfBirth, err := parseDateOnly(req.DateOfBirth)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid date of birth", nil)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		Nationality: req.Nationality,
		DateOfBirth: dateOfBirth,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			respondError(c, response.CodeBadRequest, "email or username already registered", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrInvalidCredential):
			respondError(c, response.CodeBadRequest, "invalid registration data", nil)
		default:
			respondError(c, response.CodeInternal, "registration failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if err := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); err != nil {
		respondError(c, response.CodeBadRequest, "captcha verification failed", nil)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Identifier, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredential):
			respondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "account disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load user", err)
		return
	}
	response.Success(c, userProfileResponse(user))
}

// UpdateUserProfileRequest 更新用户资料请求
type UpdateUserProfileRequest struct {
	Nationality *string `json:"nationality"`
	DateOfBirth *string `json:"date_of_birth"`
}

// UpdateUserProfile 更新用户资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateUserProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != nil {
		parsed, err := parseDateOnly(*req.DateOfBirth)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date of birth", nil)
			return
		}
		dateOfBirth = parsed
	}

	user, err := h.UserAuthService.UpdateProfile(uid, req.Nationality, dateOfBirth)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update profile", err)
		return
	}
	response.Success(c, userProfileResponse(user))
}

// ChangeUserPasswordRequest 修改密码请求
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword 修改密码
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredential):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "failed to change password", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

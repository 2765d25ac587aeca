package dto

import (
	"time"

	"anilog/internal/microservices/http-api/models"
)

// Data Transfer Objects for authentication and account requests and responses

// RegisterRequest: payload for user registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=4,max=50"`
	Password string `json:"password" binding:"required,min=4,max=72"`
	Nickname string `json:"nickname" binding:"required,min=1,max=50"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds
	User         UserResponse `json:"user"`
}

// RefreshTokenRequest: payload for refreshing or revoking a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshResponse: a rotated token pair
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Nickname     string    `json:"nickname"`
	ProfileImage string    `json:"profileImage"`
	Role         string    `json:"role"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateProfileRequest: only the fields present are changed. Changing the
// password needs the current one.
type UpdateProfileRequest struct {
	Nickname        *string `json:"nickname" binding:"omitempty,min=1,max=50"`
	ProfileImage    *string `json:"profileImage" binding:"omitempty,max=500"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" binding:"omitempty,min=4,max=72"`
}

// DeleteAccountRequest: closing an account needs the password again
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

func FromModelToUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Role:      u.Role,
		IsAdmin:   u.IsAdmin(),
		CreatedAt: u.CreatedAt,
	}
	if u.ProfileImage != nil {
		resp.ProfileImage = *u.ProfileImage
	}
	return resp
}

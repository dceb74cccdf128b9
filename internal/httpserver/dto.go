package httpserver

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/news_website/internal/models"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

type accountResponse struct {
	GoogleID            string    `json:"googleId"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Picture             string    `json:"picture"`
	Role                string    `json:"role"`
	EditorRequestStatus string    `json:"editorRequestStatus"`
	CreatedAt           time.Time `json:"createdAt"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		GoogleID:            a.ExternalSubject,
		Name:                a.Name,
		Email:               a.Email,
		Picture:             a.AvatarURL,
		Role:                string(a.Role),
		EditorRequestStatus: string(a.EditorRequestStatus),
		CreatedAt:           a.CreatedAt,
	}
}

type callbackQuery struct {
	Code         string `query:"code"`
	State        string `query:"state"`
	ResponseType string `query:"response_type"`
	Error        string `query:"error"`
}

type listUsersQuery struct {
	Page int `query:"page" validate:"min=0"`
	Size int `query:"size" validate:"min=1,max=100"`
}

type listUsersResponse struct {
	Items []accountResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

type setRoleRequest struct {
	RoleName string `json:"roleName" validate:"required"`
}

type roleResponse struct {
	Name        string `json:"roleName"`
	Description string `json:"description"`
}

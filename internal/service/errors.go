package service

import (
	"errors"

	"github.com/Skotchmaster/news_website/internal/models"
)

var (
	ErrLoginFailed             = errors.New("login failed")
	ErrRefreshInvalidOrExpired = errors.New("refresh token invalid or expired")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidRoleTransition   = errors.New("invalid role transition")
	ErrRequestAlreadyPending   = errors.New("editor request already pending")
	ErrNoPendingRequest        = errors.New("no pending editor request")
	ErrAccountNotFound         = errors.New("account not found")
	ErrUnknownRole             = models.ErrUnknownRole
)

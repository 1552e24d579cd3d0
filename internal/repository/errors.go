// Package repository maps the gorm models in dao to domain types.
package repository

import "github.com/eventreg/regclient/internal/repository/dao"

var (
	ErrUserNotFound         = dao.ErrUserNotFound
	ErrUserEmailExists      = dao.ErrUserEmailExists
	ErrEventNotFound        = dao.ErrEventNotFound
	ErrTicketNotFound       = dao.ErrTicketNotFound
	ErrQuestionNotFound     = dao.ErrQuestionNotFound
	ErrRefreshTokenNotFound = dao.ErrRefreshTokenNotFound
	ErrInsufficientStock    = dao.ErrInsufficientStock
	ErrEventFull            = dao.ErrEventFull
)

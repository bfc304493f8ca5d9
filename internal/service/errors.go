package service

import (
	"errors"

	"dough-store/internal/payment"
)

var ErrNotFound = errors.New("not found")

var (
	ErrValidation        = errors.New("validation")
	ErrPaymentProvider   = errors.New("payment provider unavailable")
	ErrSignature         = errors.New("invalid webhook signature")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidMetadata   = payment.ErrInvalidMetadata
)

package service

import "github.com/rl1809/storefront/internal/core/domain"

var (
	ErrEmptyCart           = &domain.Error{Kind: domain.ErrValidation, Message: "Your cart is empty"}
	ErrCheckoutLogin       = &domain.Error{Kind: domain.ErrValidation, Message: "Please log in to place an order"}
	ErrMissingCredentials  = &domain.Error{Kind: domain.ErrValidation, Message: "Email and password are required"}
	ErrUnknownOrderStatus  = &domain.Error{Kind: domain.ErrValidation, Message: "Unknown order status"}
	ErrLoginRequired       = &domain.Error{Kind: domain.ErrForbidden, Message: "Please log in to continue"}
	ErrAdminRequired       = &domain.Error{Kind: domain.ErrForbidden, Message: "Administrator access required"}
	ErrStatusChangeDenied  = &domain.Error{Kind: domain.ErrForbidden, Message: "Only administrators can change order status"}
	ErrMissingPasswordPair = &domain.Error{Kind: domain.ErrValidation, Message: "Current and new password are required"}
)

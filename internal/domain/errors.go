package domain

import "errors"

var (
	// ErrUnknownIncoterm is returned when a code is not part of the Incoterm hierarchy.
	ErrUnknownIncoterm = errors.New("incoterm not found")

	// ErrInvalidRequest marks a request rejected at the boundary.
	ErrInvalidRequest = errors.New("invalid pricing request")

	// ErrPricingConfigNotFound is returned by stores with no configuration for a tenant.
	ErrPricingConfigNotFound = errors.New("pricing config not found")

	// ErrInvalidHierarchy is returned when the persisted Incoterm chain is inconsistent.
	ErrInvalidHierarchy = errors.New("invalid incoterm hierarchy")
)

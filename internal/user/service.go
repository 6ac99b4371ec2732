// Package user handles buyer profiles and shipping addresses.
package user

import (
	"context"
	"errors"

	"github.com/craftmart/storefront/internal/common"
	"github.com/craftmart/storefront/internal/store"
)

// Querier is the slice of the store the user service needs.
type Querier interface {
	UpsertUser(ctx context.Context, u store.User) (store.User, error)
	GetUser(ctx context.Context, id string) (store.User, error)
	ListAddresses(ctx context.Context, userID string) ([]store.Address, error)
	CreateAddress(ctx context.Context, a store.Address) (store.Address, error)
}

// Service backs the /me endpoints.
type Service struct {
	Q Querier
}

// Profile returns the stored profile for the authenticated user, creating it
// from the token identity on first contact.
func (s *Service) Profile(ctx context.Context, id, email, name, role string) (store.User, error) {
	u, err := s.Q.GetUser(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, err
	}
	return s.Q.UpsertUser(ctx, store.User{ID: id, Email: email, Name: name, Role: role})
}

// AddressInput is the payload for creating a shipping address.
type AddressInput struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,max=30"`
	Area     string `json:"area" validate:"required,max=200"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"required,max=100"`
	Pincode  string `json:"pincode" validate:"required,max=20"`
}

// Addresses lists the user's saved shipping addresses.
func (s *Service) Addresses(ctx context.Context, userID string) ([]store.Address, error) {
	return s.Q.ListAddresses(ctx, userID)
}

// AddAddress stores a new shipping address for the user.
func (s *Service) AddAddress(ctx context.Context, userID string, in AddressInput) (store.Address, error) {
	if userID == "" {
		return store.Address{}, common.Forbidden("authentication required")
	}
	return s.Q.CreateAddress(ctx, store.Address{
		UserID:   userID,
		FullName: in.FullName,
		Phone:    in.Phone,
		Area:     in.Area,
		City:     in.City,
		State:    in.State,
		Pincode:  in.Pincode,
	})
}

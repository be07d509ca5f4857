package accounts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// AdminCreateUser provisions an account on behalf of an administrator,
// optionally with the admin flag set.
func (s *Service) AdminCreateUser(ctx context.Context, req AdminCreateUserRequest) (*ProfileResponse, error) {
	profile, err := s.createAccount(ctx, RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	}, req.IsAdmin)
	if err != nil {
		return nil, err
	}
	response := FromModel(profile)
	return &response, nil
}

// AdminUpdateUser edits another user's identity fields and admin flag.
// Email stays immutable, same as on the donor-facing profile edit.
func (s *Service) AdminUpdateUser(ctx context.Context, id uuid.UUID, req AdminUpdateUserRequest) (*ProfileResponse, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	profile.FirstName = firstName
	profile.LastName = lastName
	profile.Phone = req.Phone
	if req.IsAdmin != nil {
		profile.IsAdmin = *req.IsAdmin
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}

	response := FromModel(profile)
	return &response, nil
}

// AdminDeleteUser removes an account. Administrators cannot delete
// themselves; demote first, then have another admin remove the account.
func (s *Service) AdminDeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	affected, err := s.profiles.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete profile")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return nil
}

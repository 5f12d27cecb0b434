package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"seenstudio/internal/apperr"
	"seenstudio/internal/auth"
	"seenstudio/internal/domain"
	"seenstudio/internal/repos"
	"seenstudio/internal/validate"
)

// AccountService handles registration, login, profiles and saved addresses.
type AccountService struct {
	Users      *repos.UserRepo
	Addresses  *repos.AddressRepo
	Tokens     auth.TokenConfig
	BcryptCost int
	Now        func() time.Time
}

func NewAccountService(users *repos.UserRepo, addresses *repos.AddressRepo, tokens auth.TokenConfig, bcryptCost int) *AccountService {
	return &AccountService{Users: users, Addresses: addresses, Tokens: tokens, BcryptCost: bcryptCost, Now: time.Now}
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is what register and login return to the client.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AccountService) issue(u *domain.User) (Session, error) {
	tok, err := auth.MintToken(s.Tokens, s.Now(), u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, User: u}, nil
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	fe := validate.FieldErrors{}
	email, ok := validate.Email(in.Email)
	if !ok {
		fe["email"] = "Please enter a valid email"
	}
	if !validate.Password(in.Password) {
		fe["password"] = "Password must be 8-72 characters with a letter and a digit"
	}
	if len(fe) > 0 {
		return Session{}, apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	hash, err := auth.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return Session{}, err
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = strings.TrimSpace(in.FirstName + " " + in.LastName)
	}
	u, err := s.Users.Create(ctx, domain.User{
		Email:       strings.ToLower(email),
		Hash:        hash,
		DisplayName: display,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
	})
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

// Login checks credentials. Unknown emails and wrong passwords look the same to the caller.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (Session, error) {
	invalid := apperr.New(apperr.CodeUnauthorized, "Invalid email or password")
	u, err := s.Users.ByEmail(ctx, in.Email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return Session{}, invalid
		}
		return Session{}, err
	}
	if err := auth.CheckPassword(u.Hash, in.Password); err != nil {
		if errors.Is(err, auth.ErrBadCreds) {
			return Session{}, invalid
		}
		return Session{}, err
	}
	return s.issue(u)
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.Users.ByID(ctx, userID)
}

type ProfileInput struct {
	DisplayName string `json:"displayName" validate:"max=100"`
	FirstName   string `json:"firstName" validate:"max=100"`
	LastName    string `json:"lastName" validate:"max=100"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	return s.Users.UpdateProfile(ctx, userID,
		strings.TrimSpace(in.DisplayName), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName))
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Users.List(ctx, 100)
}

type AddressInput struct {
	Type         string `json:"type" validate:"required,oneof=shipping billing"`
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country" validate:"required"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"isDefault"`
}

func (in AddressInput) toDomain(userID, id string) (domain.Address, error) {
	a := domain.Address{
		ID:           id,
		UserID:       userID,
		Type:         domain.AddressType(strings.TrimSpace(in.Type)),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Country:      strings.TrimSpace(in.Country),
		Phone:        strings.TrimSpace(in.Phone),
		IsDefault:    in.IsDefault,
	}
	trimmed := in
	trimmed.Type, trimmed.FirstName, trimmed.LastName = string(a.Type), a.FirstName, a.LastName
	trimmed.AddressLine1, trimmed.City, trimmed.Country = a.AddressLine1, a.City, a.Country
	fe := validate.Struct(trimmed)
	if a.Country == domain.CountryUS {
		if fe == nil {
			fe = validate.FieldErrors{}
		}
		if a.State == "" {
			fe["state"] = "State is required"
		}
		if a.PostalCode == "" {
			fe["postalCode"] = "Postal code is required"
		}
		if len(fe) == 0 {
			fe = nil
		}
	}
	if fe != nil {
		return domain.Address{}, apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	return a, nil
}

func (s *AccountService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.Addresses.List(ctx, userID)
}

func (s *AccountService) CreateAddress(ctx context.Context, userID string, in AddressInput) (domain.Address, error) {
	a, err := in.toDomain(userID, "")
	if err != nil {
		return domain.Address{}, err
	}
	return s.Addresses.Save(ctx, a)
}

// UpdateAddress replaces one of the user's addresses. Other users' addresses are NOT_FOUND.
func (s *AccountService) UpdateAddress(ctx context.Context, userID, id string, in AddressInput) (domain.Address, error) {
	if _, err := s.Addresses.Get(ctx, userID, id); err != nil {
		return domain.Address{}, err
	}
	a, err := in.toDomain(userID, id)
	if err != nil {
		return domain.Address{}, err
	}
	return s.Addresses.Save(ctx, a)
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, id string) error {
	return s.Addresses.Delete(ctx, userID, id)
}

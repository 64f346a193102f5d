package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/auth"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// ProfilePatch 空字段保持不变
type ProfilePatch struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type AddressInput struct {
	Street string
	City   string
	Zip    string
}

// AuthResult 登录/注册/更新资料后返回的用户与新令牌
type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// UserService 用户、认证与地址
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfilePatch) (*AuthResult, error)
	Addresses(ctx context.Context, userID string) ([]*model.Address, error)
	AddAddress(ctx context.Context, userID string, in AddressInput) (*model.Address, error)
}

type userService struct {
	db     *gorm.DB
	tokens *auth.Manager
	cost   int
}

func NewUserService(db *gorm.DB, tokens *auth.Manager) UserService {
	return &userService{db: db, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	users := repository.NewUserRepository(s.db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Phone:     strings.TrimSpace(in.Phone),
		Password:  string(hash),
		Role:      model.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, translateDuplicate(err, ErrEmailTaken)
	}
	return s.issue(u)
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := repository.NewUserRepository(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *userService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := repository.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in ProfilePatch) (*AuthResult, error) {
	users := repository.NewUserRepository(s.db)
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email := normalizeEmail(in.Email); email != "" && email != u.Email {
		if _, err := users.GetByEmail(ctx, email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		u.Email = email
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = phone
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
	}
	u.UpdatedAt = time.Now()
	if err := users.Save(ctx, u); err != nil {
		return nil, translateDuplicate(err, ErrEmailTaken)
	}
	return s.issue(u)
}

func (s *userService) Addresses(ctx context.Context, userID string) ([]*model.Address, error) {
	return repository.NewAddressRepository(s.db).ListByUser(ctx, userID)
}

func (s *userService) AddAddress(ctx context.Context, userID string, in AddressInput) (*model.Address, error) {
	a := &model.Address{
		ID:        uuid.New().String(),
		UserID:    userID,
		Street:    strings.TrimSpace(in.Street),
		City:      strings.TrimSpace(in.City),
		Zip:       strings.TrimSpace(in.Zip),
		CreatedAt: time.Now(),
	}
	if a.Street == "" || a.City == "" || a.Zip == "" {
		return nil, ErrMissingFields
	}
	if err := repository.NewAddressRepository(s.db).Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *userService) issue(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

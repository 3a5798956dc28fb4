package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"taskmanager/internal/authz"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListTeam(ctx context.Context) ([]models.UserSummary, error)
	UpdateProfile(ctx context.Context, actor authz.Principal, req models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, password string) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	background   *Notifier
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService, background *Notifier) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		background:   background,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Title:    strings.TrimSpace(req.Title),
		Role:     strings.TrimSpace(req.Role),
		Email:    email,
		Password: hash,
		IsAdmin:  req.IsAdmin,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// гонка двух регистраций упирается в уникальный индекс
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if s.emailService != nil {
		// a failed welcome mail does not fail creation
		email, name := user.Email, user.Name
		s.background.Go("welcome-email", func(context.Context) error {
			if err := s.emailService.SendWelcomeEmail(email, name); err != nil {
				return fmt.Errorf("welcome email to %s: %w", email, err)
			}
			return nil
		})
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if err := s.authService.CheckPassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

func (s *userService) ListTeam(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].TeamMember())
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor authz.Principal, req models.ProfileUpdate) (*models.User, error) {
	target := actor.UserID
	if actor.IsAdmin && strings.TrimSpace(req.ID) != "" {
		id, err := models.ParseID(req.ID)
		if err != nil {
			return nil, err
		}
		target = id
	}
	u, err := s.repo.UpdateProfile(ctx, target,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Title), strings.TrimSpace(req.Role))
	if err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return err
	}
	return userErr(s.repo.UpdatePassword(ctx, userID, hash))
}

func (s *userService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.User, error) {
	u, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return userErr(s.repo.Delete(ctx, id))
}

func userErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

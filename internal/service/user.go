package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/types"
)

const minPasswordEntropy = 50

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// AuthorSummary is a followed author with their newest recipes.
type AuthorSummary struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

type UserService struct {
	db       *gorm.DB
	pageSize int
}

func NewUserService(db *gorm.DB, pageSize int) *UserService {
	return &UserService{db: db, pageSize: pageSize}
}

// ValidatePassword rejects passwords that are too easy to guess. field
// names the request field the password came from.
func ValidatePassword(field, password string) error {
	if err := passwordvalidator.Validate(password, minPasswordEntropy); err != nil {
		return &FieldError{Kind: ErrValidation, Field: field, Message: err.Error()}
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates a user account.
func (s *UserService) Register(ctx context.Context, req *types.UserCreateRequest) (*models.User, error) {
	if !usernamePattern.MatchString(req.Username) {
		return nil, ErrInvalidUsername
	}
	if err := ValidatePassword("password", req.Password); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := checkAvailable(db, req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// Lost a race with a concurrent registration; report the field
		// the winner took.
		if err := checkAvailable(db, req.Username, req.Email); err != nil {
			return nil, err
		}
		return nil, ErrUsernameTaken
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, nil, ErrUserNotFound)
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, page PageRequest) ([]models.User, int64, error) {
	page = page.normalize(s.pageSize)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := db.Order("created_at, id").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if err := ValidatePassword("new_password", next); err != nil {
		return err
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error
}

// Subscriptions lists the authors userID follows. Each author carries up
// to recipesLimit of their newest recipes (all when recipesLimit <= 0) and
// their total recipe count.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page PageRequest, recipesLimit int) ([]AuthorSummary, int64, error) {
	page = page.normalize(s.pageSize)
	db := s.db.WithContext(ctx)

	followed := db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var authors []models.User
	err := db.Where("id IN (?)", followed).
		Order("username").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	summaries, err := s.summarize(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// AuthorSummary loads a single author in the subscription shape.
func (s *UserService) AuthorSummary(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*AuthorSummary, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(s.db.WithContext(ctx), []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func (s *UserService) summarize(db *gorm.DB, authors []models.User, recipesLimit int) ([]AuthorSummary, error) {
	summaries := make([]AuthorSummary, len(authors))
	if len(authors) == 0 {
		return summaries, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := db.Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count author recipes: %w", err)
	}
	totals := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	q := db.Where("author_id IN ?", ids)
	if recipesLimit > 0 {
		ranked := db.Model(&models.Recipe{}).
			Select("id, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY pub_date DESC, id) AS rn").
			Where("author_id IN ?", ids)
		q = db.Where("id IN (?)", db.Table("(?) AS ranked", ranked).Select("id").Where("rn <= ?", recipesLimit))
	}
	var recipes []models.Recipe
	if err := q.Order("pub_date DESC, id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to load author recipes: %w", err)
	}

	byAuthor := make(map[uuid.UUID][]models.Recipe, len(authors))
	for _, r := range recipes {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	for i, a := range authors {
		own := byAuthor[a.ID]
		if own == nil {
			own = []models.Recipe{}
		}
		summaries[i] = AuthorSummary{Author: a, Recipes: own, RecipesCount: totals[a.ID]}
	}
	return summaries, nil
}

// checkAvailable reports ErrUsernameTaken or ErrEmailTaken when an account
// already uses username or email.
func checkAvailable(db *gorm.DB, username, email string) error {
	if taken, err := exists(db.Model(&models.User{}).Where("username = ?", username)); err != nil {
		return err
	} else if taken {
		return ErrUsernameTaken
	}
	if taken, err := exists(db.Model(&models.User{}).Where("email = ?", email)); err != nil {
		return err
	} else if taken {
		return ErrEmailTaken
	}
	return nil
}

func exists(q *gorm.DB) (bool, error) {
	var count int64
	if err := q.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

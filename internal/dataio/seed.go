package dataio

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

// SeedUser describes a development account.
type SeedUser struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Staff     bool
}

// DemoUsers are the accounts created by the seed_users command.
var DemoUsers = []SeedUser{
	{Username: "admin", Email: "admin@example.com", FirstName: "Admin", LastName: "User", Staff: true},
	{Username: "johndoe", Email: "john.doe@example.com", FirstName: "John", LastName: "Doe"},
	{Username: "janesmith", Email: "jane.smith@example.com", FirstName: "Jane", LastName: "Smith"},
	{Username: "bobwilson", Email: "bob.wilson@example.com", FirstName: "Bob", LastName: "Wilson"},
}

// SeedUsers registers each account with password. Existing usernames or
// emails are left alone.
func SeedUsers(ctx context.Context, db *gorm.DB, accounts []SeedUser, password string) (Report, error) {
	report := Report{Table: "user"}
	if err := service.ValidatePassword("password", password); err != nil {
		return report, err
	}

	users := service.NewUserService(db, 0)
	for i, a := range accounts {
		user, err := users.Register(ctx, &types.UserCreateRequest{
			Email:     a.Email,
			Username:  a.Username,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Password:  password,
		})
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			logging.Info().Str("username", a.Username).Msg("user already exists, skipping")
			continue
		}
		if err != nil {
			report.reject(i, err)
			continue
		}
		if a.Staff {
			if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("is_staff", true).Error; err != nil {
				return report, fmt.Errorf("failed to promote %s: %w", a.Username, err)
			}
		}
		report.Loaded++
	}
	return report, nil
}

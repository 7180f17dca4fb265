package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/metrics"
	"github.com/pageza/recipedia/backend/internal/models"
)

// ShoppingItem is one aggregated line of a shopping list.
type ShoppingItem struct {
	Name   string
	Amount int64
	Unit   string
}

// ShoppingList is the summed ingredient list of a user's cart.
type ShoppingList struct {
	Owner       string
	GeneratedAt time.Time
	Items       []ShoppingItem
}

type ShoppingService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShoppingService(db *gorm.DB) *ShoppingService {
	return &ShoppingService{db: db, now: time.Now}
}

// Build sums the amounts of every ingredient used by the recipes in the
// user's cart, one row per (ingredient name, unit name), ordered by name
// and then unit.
func (s *ShoppingService) Build(ctx context.Context, userID uuid.UUID) (*ShoppingList, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, translate(err, nil, ErrUserNotFound)
	}

	items := []ShoppingItem{}
	err := db.Table("recipe_ingredients AS ri").
		Select("i.name AS name, u.name AS unit, SUM(ri.amount) AS amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN units AS u ON u.id = i.unit_id").
		Joins("JOIN shopping_carts AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, u.name").
		Order("i.name, u.name").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}

	metrics.ShoppingListDownloads.Inc()
	return &ShoppingList{
		Owner:       user.FullName(),
		GeneratedAt: s.now(),
		Items:       items,
	}, nil
}

// Filename is the attachment name for the list.
func (l *ShoppingList) Filename() string {
	return fmt.Sprintf("recipedia_shopping_list_%s.txt", l.GeneratedAt.Format("2006-01-02"))
}

// Text renders the header followed by an org-mode table.
func (l *ShoppingList) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s\nfrom %s\n\n", l.Owner, l.GeneratedAt.Format("2006-01-02 15:04"))

	table := tablewriter.NewWriter(&b)
	// Wrapping and header formatting are applied while cells are added.
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Ingredient", "Amount", "Unit"})
	table.SetBorders(tablewriter.Border{Left: true, Right: true})
	table.SetCenterSeparator("|")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
	for _, item := range l.Items {
		table.Append([]string{item.Name, strconv.FormatInt(item.Amount, 10), item.Unit})
	}
	table.Render()
	return b.String()
}

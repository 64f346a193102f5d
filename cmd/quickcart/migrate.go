package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/config"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/pkg/database"
	"github.com/d60-Lab/quickcart/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and the fulfillment location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)
			return migrate(cmd.Context(), cfg, db)
		},
	}
}

// migrate 建表并确保履约门店存在
func migrate(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if err := repository.Migrate(db); err != nil {
		return err
	}
	loc := &model.Location{ID: cfg.Store.LocationID, Name: cfg.Store.LocationName, CreatedAt: time.Now()}
	if err := repository.NewLocationRepository(db).Ensure(ctx, loc); err != nil {
		return fmt.Errorf("ensure location: %w", err)
	}
	logger.Info("migration complete", zap.String("location_id", loc.ID))
	return nil
}

type seedProduct struct {
	sku      string
	name     string
	price    string
	category string
	stock    int
}

var seedProducts = []seedProduct{
	{"FRU-BAN-1", "Banana (6 pcs)", "49.00", "Fruits", 120},
	{"FRU-APL-1", "Apple Shimla (1 kg)", "189.00", "Fruits", 60},
	{"VEG-ONI-1", "Onion (1 kg)", "39.00", "Vegetables", 200},
	{"VEG-TOM-1", "Tomato (500 g)", "29.00", "Vegetables", 15},
	{"DAI-MLK-1", "Toned Milk (1 L)", "66.00", "Dairy", 80},
	{"DAI-PNR-1", "Paneer (200 g)", "95.00", "Dairy", 8},
	{"SNK-CHP-1", "Potato Chips (52 g)", "20.00", "Snacks", 300},
}

func seedCmd() *cobra.Command {
	var adminEmail, adminPassword, driverEmail string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo categories, products, an admin and a driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)
			ctx := cmd.Context()
			if err := migrate(ctx, cfg, db); err != nil {
				return err
			}
			return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := seedUser(ctx, tx, adminEmail, adminPassword, "Store Admin", model.RoleAdmin); err != nil {
					return err
				}
				if err := seedUser(ctx, tx, driverEmail, adminPassword, "Delivery Partner", model.RoleDriver); err != nil {
					return err
				}
				return seedCatalog(ctx, tx, cfg.Store.LocationID)
			})
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@quickcart.local", "admin account email")
	cmd.Flags().StringVar(&adminPassword, "password", "quickcart123", "password for seeded accounts")
	cmd.Flags().StringVar(&driverEmail, "driver-email", "driver@quickcart.local", "driver account email")
	return cmd
}

func seedUser(ctx context.Context, tx *gorm.DB, email, password, name string, role model.Role) error {
	users := repository.NewUserRepository(tx)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	return users.Create(ctx, &model.User{
		ID: uuid.New().String(), Email: email, Name: name, Password: string(hash),
		Role: role, CreatedAt: now, UpdatedAt: now,
	})
}

func seedCatalog(ctx context.Context, tx *gorm.DB, locationID string) error {
	categories := repository.NewCategoryRepository(tx)
	products := repository.NewProductRepository(tx)
	stock := repository.NewStockRepository(tx)

	existing, err := categories.List(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	now := time.Now()
	for _, sp := range seedProducts {
		catID, ok := byName[sp.category]
		if !ok {
			c := &model.Category{ID: uuid.New().String(), Name: sp.category, CreatedAt: now, UpdatedAt: now}
			if err := categories.Create(ctx, c); err != nil {
				return err
			}
			catID = c.ID
			byName[sp.category] = catID
		}
		if _, err := products.GetBySKU(ctx, sp.sku); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p := &model.Product{
			ID: uuid.New().String(), SKU: sp.sku, Name: sp.name, Price: decimal.RequireFromString(sp.price),
			CategoryID: catID, CreatedAt: now, UpdatedAt: now,
		}
		if err := products.Create(ctx, p); err != nil {
			return err
		}
		if err := stock.Set(ctx, p.ID, locationID, sp.stock); err != nil {
			return err
		}
	}
	logger.Info("seed complete", zap.Int("products", len(seedProducts)))
	return nil
}

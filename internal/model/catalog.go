package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category 商品分类
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(128);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

// Product 商品
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SKU         string          `json:"sku" gorm:"column:sku;type:varchar(64);uniqueIndex;not null"`
	Name        string          `json:"name" gorm:"type:varchar(255);index;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Description string          `json:"description" gorm:"type:text"`
	CategoryID  string          `json:"categoryId" gorm:"type:varchar(36);index;not null"`
	ImageURL    *string         `json:"imageUrl" gorm:"column:image_url;type:varchar(512)"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Category   *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	StockItems []StockItem `json:"stockItems,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// TotalStock sums quantities across all loaded stock rows.
func (p *Product) TotalStock() int {
	n := 0
	for _, s := range p.StockItems {
		n += s.Quantity
	}
	return n
}

// Location 履约门店（前置仓）
type Location struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Address   string    `json:"address" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Location) TableName() string { return "locations" }

// StockItem 某商品在某门店的库存，(product_id, location_id) 复合主键
type StockItem struct {
	ProductID  string    `json:"productId" gorm:"primaryKey;type:varchar(36)"`
	LocationID string    `json:"locationId" gorm:"primaryKey;type:varchar(36);index"`
	Quantity   int       `json:"quantity" gorm:"not null;default:0;check:chk_stock_non_negative,quantity >= 0"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (StockItem) TableName() string { return "stock_items" }

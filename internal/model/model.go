package model

// All lists every table for AutoMigrate, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Address{},
		&Category{},
		&Location{},
		&Product{},
		&StockItem{},
		&Order{},
		&OrderItem{},
		&WalletTransaction{},
		&Delivery{},
		&Outbox{},
	}
}

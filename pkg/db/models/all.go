package models

// All lists the models managed by AutoMigrate for SQLite deployments.
func All() []any {
	return []any{&CartSession{}, &CartLineItem{}}
}

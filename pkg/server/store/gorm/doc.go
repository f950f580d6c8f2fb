// Package gorm provides GORM-based PostgreSQL implementations of the store
// interfaces defined in the parent store package.
//
// Read-modify-write updates lock the target row with SELECT ... FOR UPDATE
// inside a transaction; access counting is a single UPDATE statement. The
// *gorm.DB handed to the constructors should come from db.Connect, which
// enables error translation so unique violations map to store sentinels.
package gorm

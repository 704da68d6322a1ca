package database

import "gorm.io/gorm"

// DB is the process-wide database handle, set once by SetupDatabase.
var DB *gorm.DB

// GetDB returns the database handle for packages that are not wired through
// the repository factory.
func GetDB() *gorm.DB {
	return DB
}

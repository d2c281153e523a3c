package config

// Default on-disk locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./inkwell.db"

	// DefaultCoversDir is the default directory for stored cover images
	DefaultCoversDir = "./covers"
)

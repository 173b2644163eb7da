package config

// Default storage locations
const (
	// DefaultWordLibDir is where library files are kept
	DefaultWordLibDir = "./wordlibs"

	// DefaultDatabasePath is the default path for the preferences database
	DefaultDatabasePath = "./wordbook.db"
)

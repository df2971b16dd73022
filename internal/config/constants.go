package config

// DefaultDatabasePath is the default path for the application database when
// running on the sqlite driver.
const DefaultDatabasePath = "./inkwell.db"

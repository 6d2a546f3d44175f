// Package database connects helloapi to its optional incident store.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool
//   - SQLite: modernc.org/sqlite, single connection
//
// Type "none" means no store; callers check Config.Enabled before connecting.
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "helloapi.db",
//	    Tables:      helloapi.Tables{Incidents: "helloapi_incidents"},
//	    AutoMigrate: true,
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	service := helloapi.NewIncidentService(db.GetRepo(), helloapi.Production)
//
// Open pings the backend, runs migrations when AutoMigrate is set, and
// validates the schema. Connect only opens the connection.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database

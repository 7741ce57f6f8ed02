// Package database provides SQLite connectivity for TaskHub Core.
//
// It opens the database with foreign keys enforced and optional WAL mode,
// limits the pool to a single writer connection, and applies versioned
// migrations from any fs.FS (normally the embedded migrations package).
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All repository queries use parameterised statements.
package database

// Package pg wraps the pgx/v5 driver with the pieces an application needs at
// startup and at the storage boundary: a retrying pool constructor, goose
// migrations read from an embedded filesystem, transaction scoping, health
// checks and helpers that classify PostgreSQL errors.
//
// # Usage
//
//	cfg := config.MustLoad[pg.Config]()
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
//	err = pg.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		// statements executed here commit together or not at all
//		return nil
//	})
//
// # Error Handling
//
// [IsNotFoundError], [IsDuplicateKeyError] and [ConstraintName] unwrap
// *pgconn.PgError values so storage code can turn driver errors into domain
// errors without importing pgconn.
package pg

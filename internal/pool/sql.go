package pool

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// SQLFactory opens dedicated connections from db. The pool decides how many
// are held; db's own open and idle limits should be at least MaxSize.
func SQLFactory(db *sql.DB) Factory {
	return func(ctx context.Context) (Conn, error) {
		conn, err := db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

type rawConn interface {
	Raw(f func(driverConn any) error) error
}

// invalidate closes conn. A *sql.Conn is first marked bad so database/sql
// drops the underlying driver connection instead of returning it to db.
func invalidate(conn Conn) error {
	if rc, ok := conn.(rawConn); ok {
		_ = rc.Raw(func(any) error { return driver.ErrBadConn })
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}

package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// bindNamed expands the :name parameters of q from the db tags of arg.
func bindNamed(q string, arg interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.Named(q, arg)
	if err != nil {
		return "", nil, errors.Wrap(err, "binding named query")
	}
	return query, args, nil
}

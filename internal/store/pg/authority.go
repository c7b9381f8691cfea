package pg

import (
	"context"
	"fmt"

	"trade_engine/pkg/db"
)

// Authority implement store.AuthorityStore
type Authority struct {
	tx db.TxManager
}

func NewAuthority(tx db.TxManager) *Authority {
	return &Authority{tx: tx}
}

func (a *Authority) Authorized(ctx context.Context, user, subjectArea, privilege string) (ok bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Authority.Authorized: %w", err)
		}
	}()

	row := a.tx.Conn().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM vw_user_authority
			WHERE "user" = $1 AND subject_area = $2 AND privilege = $3
		)`, user, subjectArea, privilege)
	if err = row.Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

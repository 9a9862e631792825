package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles the request context with the gorm handle (or an open
// transaction). Repositories take this instead of a bare *gorm.DB so a
// service can run several repo calls inside one transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context, tx *gorm.DB) Context {
	return Context{Ctx: ctx, Tx: tx}
}

func (c Context) DB() *gorm.DB {
	return c.Tx.WithContext(c.Ctx)
}

package ports

import "context"

// TxManager runs fn inside one unit of work. Repositories called with the
// context handed to fn join it; an error from fn rolls it back.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

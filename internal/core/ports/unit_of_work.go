package ports

import "context"

// TxStores exposes the stores bound to one transaction.
type TxStores interface {
	Reports() ReportRepository
	Notifications() NotificationSink
}

// UnitOfWork runs fn inside a transaction. If fn returns an error every
// write made through the TxStores is discarded.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx TxStores) error) error
}

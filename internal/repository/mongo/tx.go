package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxManager runs units of work inside a Mongo session transaction.
type TxManager struct {
	client  *mongo.Client
	enabled bool
}

func NewTxManager(client *mongo.Client, enabled bool) *TxManager {
	return &TxManager{client: client, enabled: enabled}
}

// RunInTx executes fn in a transaction. Repository calls made with the ctx
// passed to fn join it. When transactions are disabled, or ctx already
// carries a session, fn runs as is.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// counter allocates sequential int64 IDs, one counter document per kind
type counter struct {
	client *firestore.Client
	names  *collectionNames
}

func (c *counter) ref(kind string) *firestore.DocumentRef {
	return c.client.Collection(c.names.name(collectionCounters)).Doc(kind + "_counter")
}

// nextInTx reads and advances the counter inside an existing transaction.
// Callers must invoke it before any write in the same transaction.
func (c *counter) nextInTx(tx *firestore.Transaction, kind string) (int64, func() error, error) {
	counterRef := c.ref(kind)

	doc, err := tx.Get(counterRef)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 1, func() error {
				return tx.Set(counterRef, map[string]interface{}{"value": int64(1)})
			}, nil
		}
		return 0, nil, goerr.Wrap(err, "failed to get counter", goerr.V("kind", kind))
	}

	currentValue, err := doc.DataAt("value")
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to get counter value", goerr.V("kind", kind))
	}

	val, ok := currentValue.(int64)
	if !ok {
		return 0, nil, goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
	}

	nextID := val + 1
	return nextID, func() error {
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	}, nil
}

func (c *counter) next(ctx context.Context, kind string) (int64, error) {
	var nextID int64
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		id, commit, err := c.nextInTx(tx, kind)
		if err != nil {
			return err
		}
		nextID = id
		return commit()
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID", goerr.V("kind", kind))
	}
	return nextID, nil
}

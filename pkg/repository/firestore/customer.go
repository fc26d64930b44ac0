package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type customerRepository struct {
	client  *firestore.Client
	names   *collectionNames
	counter *counter
}

// customerEmailDoc maps a normalized email to the customer ID
type customerEmailDoc struct {
	CustomerID int64 `firestore:"CustomerID"`
}

func (r *customerRepository) customers() *firestore.CollectionRef {
	return r.client.Collection(r.names.name(collectionCustomers))
}

// emailRef returns the index document for email. The document ID is a hash
// so emails with reserved characters are safe.
func (r *customerRepository) emailRef(email string) *firestore.DocumentRef {
	sum := sha256.Sum256([]byte(email))
	return r.client.Collection(r.names.name(collectionCustomerEmails)).Doc(hex.EncodeToString(sum[:]))
}

func (r *customerRepository) CreateOrGet(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	email := model.NormalizeEmail(customer.Email)
	if email == "" {
		return nil, goerr.New("customer email is required")
	}

	var result *model.Customer
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		emailDoc, err := tx.Get(r.emailRef(email))
		if err == nil {
			var idx customerEmailDoc
			if err := emailDoc.DataTo(&idx); err != nil {
				return goerr.Wrap(err, "failed to decode customer email index")
			}
			snap, err := tx.Get(r.customers().Doc(fmt.Sprintf("%d", idx.CustomerID)))
			if err != nil {
				return goerr.Wrap(err, "failed to get customer", goerr.V("id", idx.CustomerID))
			}
			var existing model.Customer
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to decode customer")
			}
			result = &existing
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get customer email index")
		}

		nextID, commit, err := r.counter.nextInTx(tx, "customer")
		if err != nil {
			return err
		}

		created := &model.Customer{
			ID:        nextID,
			Email:     email,
			Name:      customer.Name,
			Company:   customer.Company,
			CreatedAt: time.Now().UTC(),
		}
		if err := commit(); err != nil {
			return err
		}
		if err := tx.Set(r.customers().Doc(fmt.Sprintf("%d", created.ID)), created); err != nil {
			return err
		}
		if err := tx.Set(r.emailRef(email), &customerEmailDoc{CustomerID: created.ID}); err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create or get customer", goerr.V("email", email))
	}

	return result, nil
}

func (r *customerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	snap, err := r.customers().Doc(fmt.Sprintf("%d", id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get customer", goerr.V("id", id))
	}

	var c model.Customer
	if err := snap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode customer", goerr.V("id", id))
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	normalized := model.NormalizeEmail(email)
	snap, err := r.emailRef(normalized).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "customer not found", goerr.V("email", normalized))
		}
		return nil, goerr.Wrap(err, "failed to get customer email index", goerr.V("email", normalized))
	}

	var idx customerEmailDoc
	if err := snap.DataTo(&idx); err != nil {
		return nil, goerr.Wrap(err, "failed to decode customer email index")
	}
	return r.Get(ctx, idx.CustomerID)
}

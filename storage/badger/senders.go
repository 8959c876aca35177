package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/storage/badger/operation"
)

// Senders implements a persistent storage of authorized senders.
type Senders struct {
	db *badger.DB
}

var _ storage.Senders = (*Senders)(nil)

func NewSenders(db *badger.DB) *Senders {
	return &Senders{db: db}
}

func (s *Senders) Authorize(sender common.Address) error {
	err := operation.RetryOnConflict(s.db.Update, operation.SkipDuplicates(operation.InsertSender(sender)))
	if err != nil {
		return fmt.Errorf("could not authorize sender %s: %w", sender.Hex(), err)
	}
	return nil
}

func (s *Senders) Revoke(sender common.Address) error {
	err := operation.RetryOnConflict(s.db.Update, operation.SkipNonExist(operation.RemoveSender(sender)))
	if err != nil {
		return fmt.Errorf("could not revoke sender %s: %w", sender.Hex(), err)
	}
	return nil
}

func (s *Senders) IsAuthorized(sender common.Address) (bool, error) {
	var exists bool
	err := s.db.View(operation.CheckSender(sender, &exists))
	if err != nil {
		return false, fmt.Errorf("could not check sender %s: %w", sender.Hex(), err)
	}
	return exists, nil
}

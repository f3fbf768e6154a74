// Package jsonfile persists the engine's snapshots as whole-file JSON
// documents. Load errors distinguish a missing file (first run, start
// empty) from an unreadable one (fatal: startup must abort rather than
// silently start empty).
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/democratia-universalis/duengine/internal/apperrors"
	"github.com/democratia-universalis/duengine/internal/core/domain"
	portsrepo "github.com/democratia-universalis/duengine/internal/core/ports/repositories"
)

// transactionDateLayout is the on-disk date format of transactions.
const transactionDateLayout = "02/01/2006"

// LedgerStore persists the ledger snapshot to a single JSON file with an
// accounts map and a transactions map, both keyed by decimal id.
type LedgerStore struct {
	path string
}

// NewLedgerStore creates a store writing to path.
func NewLedgerStore(path string) *LedgerStore {
	return &LedgerStore{path: path}
}

var _ portsrepo.LedgerStore = (*LedgerStore)(nil)

type accountRecord struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Users   []string `json:"users"`
	Balance int64    `json:"balance"`
}

type transactionRecord struct {
	From    int64  `json:"from"`
	To      int64  `json:"to"`
	Amount  int64  `json:"amount"`
	Date    string `json:"date"`
	Details string `json:"details,omitempty"`
}

type ledgerFile struct {
	Accounts     map[string]accountRecord     `json:"accounts"`
	Transactions map[string]transactionRecord `json:"transactions"`
}

// SaveLedger writes the full snapshot.
func (s *LedgerStore) SaveLedger(_ context.Context, snap domain.LedgerSnapshot) error {
	doc := ledgerFile{
		Accounts:     make(map[string]accountRecord, len(snap.Accounts)),
		Transactions: make(map[string]transactionRecord, len(snap.Transactions)),
	}
	for id, acc := range snap.Accounts {
		doc.Accounts[strconv.FormatInt(id, 10)] = accountRecord{
			Name:    acc.Name,
			Owner:   acc.OwnerID,
			Users:   acc.UserIDs,
			Balance: acc.Balance,
		}
	}
	for id, txn := range snap.Transactions {
		doc.Transactions[strconv.FormatInt(id, 10)] = transactionRecord{
			From:    txn.FromAccountID,
			To:      txn.ToAccountID,
			Amount:  txn.Amount,
			Date:    txn.Date.Format(transactionDateLayout),
			Details: txn.Details,
		}
	}
	return writeFile(s.path, doc)
}

// LoadLedger reads the snapshot back. A missing file yields an empty
// snapshot.
func (s *LedgerStore) LoadLedger(_ context.Context) (*domain.LedgerSnapshot, error) {
	snap := &domain.LedgerSnapshot{
		Accounts:     make(map[int64]*domain.Account),
		Transactions: make(map[int64]*domain.Transaction),
	}

	var doc ledgerFile
	found, err := readFile(s.path, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return snap, nil
	}

	for key, rec := range doc.Accounts {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ledger file %s: account id %q: %w", s.path, key, apperrors.ErrSerialization)
		}
		users := rec.Users
		if len(users) == 0 {
			users = []string{rec.Owner}
		}
		snap.Accounts[id] = &domain.Account{
			AccountID: id,
			Name:      rec.Name,
			OwnerID:   rec.Owner,
			UserIDs:   users,
			Balance:   rec.Balance,
		}
	}
	for key, rec := range doc.Transactions {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ledger file %s: transaction id %q: %w", s.path, key, apperrors.ErrSerialization)
		}
		date, err := time.Parse(transactionDateLayout, rec.Date)
		if err != nil {
			return nil, fmt.Errorf("ledger file %s: transaction %d date %q: %w", s.path, id, rec.Date, apperrors.ErrSerialization)
		}
		snap.Transactions[id] = &domain.Transaction{
			TransactionID: id,
			Date:          date,
			FromAccountID: rec.From,
			ToAccountID:   rec.To,
			Amount:        rec.Amount,
			Details:       rec.Details,
		}
	}
	return snap, nil
}

// writeFile marshals doc and writes it, creating parent directories as
// needed.
func writeFile(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readFile unmarshals path into doc. It reports whether the file existed;
// an unreadable file is an apperrors.ErrSerialization.
func readFile(path string, doc any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return false, fmt.Errorf("snapshot file %s: %v: %w", path, err, apperrors.ErrSerialization)
	}
	return true, nil
}

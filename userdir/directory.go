// Copyright 2025 NovaPay
// SPDX-License-Identifier: Apache-2.0

// Package userdir is the fixed account directory the responder tools read
// from. It is a mock collaborator: lookups hit an in-process table seeded at
// construction, never a database.
package userdir

import (
	"sort"
	"time"
)

// Transaction is one ledger entry on an account.
type Transaction struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Description string  `json:"description"`
}

// User is a directory record: profile, balance and transaction history.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	AccountStatus string        `json:"account_status"`
	Balance       float64       `json:"balance"`
	CreatedDate   string        `json:"created_date"`
	Transactions  []Transaction `json:"transactions"`
}

// Profile is the redacted subset exposed by the support agent's
// get_user_info tool. Balance and transactions are never included.
type Profile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	AccountStatus string `json:"account_status"`
	CreatedDate   string `json:"created_date"`
}

// Directory is a keyed lookup over the seeded accounts. Reads only; safe for
// concurrent use.
type Directory struct {
	users map[string]User
}

// New returns a directory seeded with the demo account set.
func New() *Directory {
	return &Directory{users: seedUsers()}
}

// Lookup returns the record for id, or false when the account is unknown.
func (d *Directory) Lookup(id string) (User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// ProfileFor returns the redacted profile for id.
func (d *Directory) ProfileFor(id string) (Profile, bool) {
	u, ok := d.users[id]
	if !ok {
		return Profile{}, false
	}
	return Profile{
		Name:          u.Name,
		Email:         u.Email,
		AccountStatus: u.AccountStatus,
		CreatedDate:   u.CreatedDate,
	}, true
}

// RecentTransactions returns up to limit transactions for id, newest first.
// Entries with unparseable dates sort last.
func (d *Directory) RecentTransactions(id string, limit int) ([]Transaction, bool) {
	u, ok := d.users[id]
	if !ok {
		return nil, false
	}
	if limit <= 0 {
		limit = 5
	}

	txs := make([]Transaction, len(u.Transactions))
	copy(txs, u.Transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		ti, erri := time.Parse("2006-01-02", txs[i].Date)
		tj, errj := time.Parse("2006-01-02", txs[j].Date)
		if erri != nil {
			return false
		}
		if errj != nil {
			return true
		}
		return ti.After(tj)
	})

	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, true
}

func seedUsers() map[string]User {
	return map[string]User{
		"client123": {
			ID: "client123", Name: "João Silva", Email: "joao@email.com",
			Phone: "+55 11 99999-9999", AccountStatus: "active",
			Balance: 1250.50, CreatedDate: "2023-01-15",
			Transactions: []Transaction{
				{ID: "tx001", Amount: -50.00, Date: "2025-06-15", Description: "Compra loja ABC"},
				{ID: "tx002", Amount: 200.00, Date: "2025-06-14", Description: "Depósito PIX"},
				{ID: "tx003", Amount: -25.30, Date: "2025-06-13", Description: "Pagamento cartão"},
			},
		},
		"client456": {
			ID: "client456", Name: "Maria Santos", Email: "maria@email.com",
			Phone: "+55 11 88888-8888", AccountStatus: "suspended",
			Balance: 0.00, CreatedDate: "2023-05-20",
			Transactions: []Transaction{
				{ID: "tx004", Amount: -100.00, Date: "2025-06-10", Description: "Compra online"},
			},
		},
		"client789": {
			ID: "client789", Name: "Carlos Oliveira", Email: "carlos@email.com",
			Phone: "+55 11 77777-7777", AccountStatus: "active",
			Balance: 500.75, CreatedDate: "2023-03-25",
			Transactions: []Transaction{
				{ID: "tx005", Amount: -300.00, Date: "2025-06-12", Description: "Pagamento boleto"},
				{ID: "tx006", Amount: 400.00, Date: "2025-06-11", Description: "Depósito via transferência"},
				{ID: "tx007", Amount: -50.00, Date: "2025-06-10", Description: "Compra online"},
			},
		},
		"client101": {
			ID: "client101", Name: "Luciana Almeida", Email: "luciana@email.com",
			Phone: "+55 11 66666-6666", AccountStatus: "active",
			Balance: 1500.00, CreatedDate: "2023-02-01",
			Transactions: []Transaction{
				{ID: "tx008", Amount: 1000.00, Date: "2025-06-09", Description: "Depósito bancário"},
				{ID: "tx009", Amount: -200.00, Date: "2025-06-08", Description: "Compra loja XYZ"},
				{ID: "tx010", Amount: -300.00, Date: "2025-06-07", Description: "Pagamento fatura cartão"},
			},
		},
		"client112": {
			ID: "client112", Name: "Felipe Costa", Email: "felipe@email.com",
			Phone: "+55 11 55555-5555", AccountStatus: "active",
			Balance: 2200.40, CreatedDate: "2022-12-05",
			Transactions: []Transaction{
				{ID: "tx011", Amount: -150.00, Date: "2025-06-14", Description: "Compra supermercado"},
				{ID: "tx012", Amount: 500.00, Date: "2025-06-13", Description: "Depósito de salário"},
				{ID: "tx013", Amount: -200.00, Date: "2025-06-12", Description: "Compra gasolina"},
			},
		},
		"client131": {
			ID: "client131", Name: "Ana Pereira", Email: "ana@email.com",
			Phone: "+55 11 44444-4444", AccountStatus: "active",
			Balance: 750.30, CreatedDate: "2023-04-18",
			Transactions: []Transaction{
				{ID: "tx014", Amount: -120.50, Date: "2025-06-14", Description: "Compra online"},
				{ID: "tx015", Amount: 250.00, Date: "2025-06-13", Description: "Transferência recebida"},
				{ID: "tx016", Amount: -50.00, Date: "2025-06-12", Description: "Compra em loja física"},
			},
		},
		"client141": {
			ID: "client141", Name: "Rafael Martins", Email: "rafael@email.com",
			Phone: "+55 11 33333-3333", AccountStatus: "inactive",
			Balance: 80.00, CreatedDate: "2023-06-10",
			Transactions: []Transaction{
				{ID: "tx017", Amount: -30.00, Date: "2025-06-15", Description: "Pagamento de conta"},
				{ID: "tx018", Amount: 50.00, Date: "2025-06-14", Description: "Depósito"},
				{ID: "tx016", Amount: -50.00, Date: "2025-06-12", Description: "Compra em loja física"},
			},
		},
	}
}

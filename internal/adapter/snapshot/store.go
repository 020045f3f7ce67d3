// Package snapshot holds the in-memory records snapshot the core treats as
// the single source of truth for computation. It is mutated only through the
// designated write operations and kept eventually consistent with the remote
// store by the ledger service's write-through calls.
package snapshot

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
)

// Store is the in-memory snapshot of one user's records. Transactions are
// kept newest-first. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	transactions []*domain.Transaction
	tasks        []*domain.Task
	settings     *domain.BudgetSettings
	categories   []*domain.Category
}

// NewStore creates an empty snapshot store
func NewStore() *Store {
	return &Store{}
}

// Hydrate replaces the whole snapshot, typically from the remote store at
// startup. Transactions must be sorted newest-first by the caller.
func (s *Store) Hydrate(txs []*domain.Transaction, tasks []*domain.Task, settings *domain.BudgetSettings, categories []*domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = txs
	s.tasks = tasks
	s.settings = settings
	s.categories = categories
}

// Transactions returns the transaction list, newest-first
func (s *Store) Transactions() []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// AddTransaction inserts a transaction keeping newest-first order
func (s *Store) AddTransaction(tx *domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := len(s.transactions)
	for i, existing := range s.transactions {
		if !tx.Date.Before(existing.Date) {
			pos = i
			break
		}
	}

	s.transactions = append(s.transactions, nil)
	copy(s.transactions[pos+1:], s.transactions[pos:])
	s.transactions[pos] = tx
}

// RemoveTransaction deletes a transaction by ID, reporting whether it existed
func (s *Store) RemoveTransaction(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return true
		}
	}
	return false
}

// Tasks returns all tasks
func (s *Store) Tasks() []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// AddTask appends a task
func (s *Store) AddTask(task *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// TaskByID returns the task with the given ID, or nil
func (s *Store) TaskByID(id uuid.UUID) *domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task
		}
	}
	return nil
}

// ReplaceTask swaps the stored task with the given state, reporting whether
// the ID was found
func (s *Store) ReplaceTask(task *domain.Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tasks {
		if existing.ID == task.ID {
			s.tasks[i] = task
			return true
		}
	}
	return false
}

// RemoveTask deletes a task by ID, reporting whether it existed
func (s *Store) RemoveTask(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, task := range s.tasks {
		if task.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Settings returns the budget settings, or nil if never configured
func (s *Store) Settings() *domain.BudgetSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the budget settings
func (s *Store) SetSettings(settings *domain.BudgetSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Categories returns all categories
func (s *Store) Categories() []*domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// AddCategory appends a category
func (s *Store) AddCategory(category *domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, category)
}

// CategoryByName returns the category with the given name, or nil
func (s *Store) CategoryByName(name string) *domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

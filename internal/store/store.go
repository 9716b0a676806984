// Package store owns the authoritative inventory mapping and its persistence.
//
// Every mutating operation runs as one critical section: the in-memory map is
// updated, the full mapping is flushed to the inventory file via a temp-file
// rename, and only then is an activity entry appended to the audit log. If
// any write fails, the in-memory change is rolled back and the error is
// returned, so the audit log never records a mutation the inventory file did
// not commit.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stocksentry/stocksentry/internal/model"
)

var (
	// ErrDuplicateID is returned by Add when the product id already exists.
	ErrDuplicateID = errors.New("product id already exists")
	// ErrNotFound is returned when the product id is absent.
	ErrNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when an adjustment would drive the
	// quantity negative; the record is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Store is the single source of truth for product records.
type Store struct {
	mu            sync.Mutex
	inventoryPath string
	activityPath  string
	threshold     int
	m             map[string]model.Product
	activity      []model.ActivityEntry
}

// Open loads the store from the inventory and activity-log files, creating
// an empty store when the files are absent.
func Open(inventoryPath, activityPath string, threshold int) (*Store, error) {
	s := &Store{
		inventoryPath: inventoryPath,
		activityPath:  activityPath,
		threshold:     threshold,
		m:             make(map[string]model.Product),
	}
	if err := s.loadInventory(); err != nil {
		return nil, err
	}
	if err := s.loadActivity(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadInventory() error {
	b, err := os.ReadFile(s.inventoryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read inventory file: %w", err)
	}
	if err := json.Unmarshal(b, &s.m); err != nil {
		return fmt.Errorf("decode inventory file: %w", err)
	}
	return nil
}

// loadActivity reads the JSON Lines audit log, one entry per line.
func (s *Store) loadActivity() error {
	f, err := os.Open(s.activityPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e model.ActivityEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("decode activity log: %w", err)
		}
		s.activity = append(s.activity, e)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read activity log: %w", err)
	}
	return nil
}

// Threshold returns the configured low-stock threshold.
func (s *Store) Threshold() int { return s.threshold }

// Add inserts a new product, logs the mutation, and persists the store.
func (s *Store) Add(id, name string, quantity int, price float64, category string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; ok {
		return model.Product{}, fmt.Errorf("add %q: %w", id, ErrDuplicateID)
	}
	p := model.Product{
		ID:          id,
		Name:        name,
		Quantity:    quantity,
		Price:       price,
		Category:    category,
		LastUpdated: time.Now().UTC(),
	}
	s.m[id] = p
	detail := fmt.Sprintf("added %s qty=%d price=%.2f category=%q", name, quantity, price, category)
	if err := s.commitLocked(model.OpAdd, id, detail, func() { delete(s.m, id) }); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// AdjustQuantity applies a signed delta to a product's quantity. A delta
// that would drive the quantity negative is rejected with
// ErrInsufficientStock and leaves the record unchanged.
func (s *Store) AdjustQuantity(id string, delta int) (model.Product, error) {
	detail := func(p model.Product) string {
		return fmt.Sprintf("adjusted %s by %+d, new qty=%d", p.Name, delta, p.Quantity)
	}
	return s.applyDelta(id, delta, model.OpUpdate, detail)
}

// Sell decrements a product's quantity by a positive amount sold, with the
// same underflow policy as AdjustQuantity but its own activity kind.
func (s *Store) Sell(id string, quantity int) (model.Product, error) {
	if quantity <= 0 {
		return model.Product{}, fmt.Errorf("sell %q: quantity must be positive, got %d", id, quantity)
	}
	detail := func(p model.Product) string {
		return fmt.Sprintf("sold %d of %s, remaining qty=%d", quantity, p.Name, p.Quantity)
	}
	return s.applyDelta(id, -quantity, model.OpSell, detail)
}

func (s *Store) applyDelta(id string, delta int, op string, detail func(model.Product) string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.m[id]
	if !ok {
		return model.Product{}, fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	}
	next := prev
	next.Quantity += delta
	if next.Quantity < 0 {
		return model.Product{}, fmt.Errorf("%s %q: have %d, delta %d: %w", op, id, prev.Quantity, delta, ErrInsufficientStock)
	}
	next.LastUpdated = time.Now().UTC()
	s.m[id] = next
	if err := s.commitLocked(op, id, detail(next), func() { s.m[id] = prev }); err != nil {
		return model.Product{}, err
	}
	return next, nil
}

// Remove deletes a product and returns the removed record.
func (s *Store) Remove(id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.m[id]
	if !ok {
		return model.Product{}, fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	delete(s.m, id)
	detail := fmt.Sprintf("removed %s", prev.Name)
	if err := s.commitLocked(model.OpRemove, id, detail, func() { s.m[id] = prev }); err != nil {
		return model.Product{}, err
	}
	return prev, nil
}

// Get returns one product by id.
func (s *Store) Get(id string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	return p, ok
}

// Snapshot returns a copy of all products ordered by id.
func (s *Store) Snapshot() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Status partitions the current snapshot into ok/low/out and totals. Pure
// read, no side effects.
func (s *Store) Status() model.StatusSummary {
	snap := s.Snapshot()
	sum := model.StatusSummary{TotalProducts: len(snap)}
	for _, p := range snap {
		sum.TotalUnits += p.Quantity
		sum.TotalValue += float64(p.Quantity) * p.Price
		switch model.StatusFor(p.Quantity, s.threshold) {
		case model.StatusOut:
			sum.Out = append(sum.Out, p)
		case model.StatusLow:
			sum.Low = append(sum.Low, p)
		default:
			sum.OK = append(sum.OK, p)
		}
	}
	return sum
}

// RecentActivities returns up to limit audit entries, newest first.
func (s *Store) RecentActivities(limit int) []model.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.activity) {
		limit = len(s.activity)
	}
	out := make([]model.ActivityEntry, 0, limit)
	for i := len(s.activity) - 1; i >= len(s.activity)-limit; i-- {
		out = append(out, s.activity[i])
	}
	return out
}

// Flush rewrites the inventory file from the current mapping.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// commitLocked flushes the inventory file, then appends the activity entry,
// so a mutation that never reached the inventory file leaves no audit line.
// On failure the restore callback undoes the in-memory mutation; a failed
// append also re-flushes the restored mapping to keep the file in step.
func (s *Store) commitLocked(op, productID, detail string, restore func()) error {
	entry := model.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Operation: op,
		ProductID: productID,
		Detail:    detail,
	}
	if err := s.persistLocked(); err != nil {
		restore()
		return err
	}
	if err := s.appendActivityLocked(entry); err != nil {
		restore()
		if perr := s.persistLocked(); perr != nil {
			return errors.Join(err, fmt.Errorf("restore inventory file: %w", perr))
		}
		return err
	}
	s.activity = append(s.activity, entry)
	return nil
}

func (s *Store) appendActivityLocked(entry model.ActivityEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode activity entry: %w", err)
	}
	f, err := os.OpenFile(s.activityPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// persistLocked writes the full mapping to a temp file in the same directory
// and renames it over the inventory file, so a crash mid-write never leaves
// a partially written file to be read back.
func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	dir := filepath.Dir(s.inventoryPath)
	tmp, err := os.CreateTemp(dir, ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("create temp inventory file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp inventory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp inventory file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.inventoryPath); err != nil {
		return fmt.Errorf("replace inventory file: %w", err)
	}
	return nil
}

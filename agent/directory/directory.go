package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrEmptyLookupKey   = errors.New("lookup key is empty")
)

// Customer is a directory record. The workflow core only ever reads it.
type Customer struct {
	ID                  string `json:"id" bun:"id,pk"`
	Name                string `json:"name" bun:"name"`
	Email               string `json:"email" bun:"email"`
	Plan                string `json:"plan" bun:"plan"`
	PaymentStatus       string `json:"payment_status" bun:"payment_status"`
	LastPaymentDate     string `json:"last_payment_date" bun:"last_payment_date"`
	NextBillingDate     string `json:"next_billing_date" bun:"next_billing_date"`
	PaymentMethodSuffix string `json:"payment_method_suffix" bun:"payment_method_suffix"`
}

// Directory resolves customers by account id, email, or name. Email and
// name lookups are case-insensitive. A missing record is
// ErrCustomerNotFound, never fatal.
type Directory interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByName(ctx context.Context, name string) (*Customer, error)
}

// MemoryDirectory serves a fixed customer set loaded at construction.
// Read-only after construction, safe for concurrent use.
type MemoryDirectory struct {
	byID    map[string]*Customer
	byEmail map[string]*Customer
	byName  map[string]*Customer
}

type dataset struct {
	Customers []Customer `json:"customers"`
}

// NewMemoryDirectory reads a JSON dataset ({"customers":[...]}) and indexes
// it by id and lowercased email.
func NewMemoryDirectory(r io.Reader) (*MemoryDirectory, error) {
	var ds dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode customer dataset: %w", err)
	}

	d := &MemoryDirectory{
		byID:    make(map[string]*Customer, len(ds.Customers)),
		byEmail: make(map[string]*Customer, len(ds.Customers)),
		byName:  make(map[string]*Customer, len(ds.Customers)),
	}
	for i := range ds.Customers {
		c := &ds.Customers[i]
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("customer record %d has no id", i)
		}
		d.byID[id] = c
		if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
			d.byEmail[email] = c
		}
		if name := strings.ToLower(strings.TrimSpace(c.Name)); name != "" {
			d.byName[name] = c
		}
	}
	return d, nil
}

// MustEmbedded builds a MemoryDirectory from the bundled dataset.
func MustEmbedded() *MemoryDirectory {
	d, err := NewMemoryDirectory(strings.NewReader(embeddedCustomers))
	if err != nil {
		panic(fmt.Sprintf("embedded customer dataset is invalid: %v", err))
	}
	return d
}

func (d *MemoryDirectory) FindByID(ctx context.Context, id string) (*Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyLookupKey
	}
	c, ok := d.byID[strings.ToUpper(id)]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrCustomerNotFound, id)
	}
	return c, nil
}

func (d *MemoryDirectory) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmptyLookupKey
	}
	c, ok := d.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%w: email=%s", ErrCustomerNotFound, email)
	}
	return c, nil
}

// FindByName matches the full name first, then falls back to a first or
// last name match. The fallback only binds when exactly one customer
// matches; shared names come back ErrCustomerNotFound.
func (d *MemoryDirectory) FindByName(ctx context.Context, name string) (*Customer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrEmptyLookupKey
	}
	if c, ok := d.byName[name]; ok {
		return c, nil
	}

	var match *Customer
	for _, c := range d.byID {
		if !nameTokensOverlap(name, c.Name) {
			continue
		}
		if match != nil && match != c {
			return nil, fmt.Errorf("%w: name=%s matches multiple customers", ErrCustomerNotFound, name)
		}
		match = c
	}
	if match == nil {
		return nil, fmt.Errorf("%w: name=%s", ErrCustomerNotFound, name)
	}
	return match, nil
}

func nameTokensOverlap(query, customerName string) bool {
	parts := strings.Fields(strings.ToLower(customerName))
	for _, token := range strings.Fields(query) {
		for _, part := range parts {
			if token == part {
				return true
			}
		}
	}
	return false
}

func (d *MemoryDirectory) Len() int {
	return len(d.byID)
}

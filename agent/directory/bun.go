package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// BunConfig configures the Postgres-backed directory.
type BunConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// BunDirectory reads customer records from Postgres. Lookups are read-only;
// the table is maintained outside this service.
type BunDirectory struct {
	db      *bun.DB
	timeout time.Duration
}

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`
	Customer
}

func NewBunDirectory(cfg BunConfig) (*BunDirectory, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("directory dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &BunDirectory{db: db, timeout: timeout}, nil
}

func (d *BunDirectory) FindByID(ctx context.Context, id string) (*Customer, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return nil, ErrEmptyLookupKey
	}
	return d.findOne(ctx, "id = ?", id)
}

func (d *BunDirectory) FindByEmail(ctx context.Context, email string) (*Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmptyLookupKey
	}
	return d.findOne(ctx, "lower(email) = ?", email)
}

// FindByName tries an exact full-name match, then a first-or-last-name
// match that only binds when it is unambiguous.
func (d *BunDirectory) FindByName(ctx context.Context, name string) (*Customer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, ErrEmptyLookupKey
	}
	c, err := d.findOne(ctx, "lower(name) = ?", name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var rows []customerRow
	err = d.db.NewSelect().
		Model(&rows).
		Where("string_to_array(lower(name), ' ') && string_to_array(?, ' ')", name).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory query: %w", err)
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("%w: name=%s", ErrCustomerNotFound, name)
	}
	c = &rows[0].Customer
	return c, nil
}

func (d *BunDirectory) findOne(ctx context.Context, where string, arg any) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	row := new(customerRow)
	err := d.db.NewSelect().Model(row).Where(where, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", ErrCustomerNotFound, arg)
		}
		return nil, fmt.Errorf("directory query: %w", err)
	}
	c := row.Customer
	return &c, nil
}

func (d *BunDirectory) Close() error {
	return d.db.Close()
}

// Package driver registers litebind as a database/sql driver named
// "litebind". The data source name is the database path; an empty name or
// ":memory:" opens a private in-memory database per connection.
package driver

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/connerohnesorge/litebind"
	"github.com/connerohnesorge/litebind/internal/config"
)

// DriverName is the name registered with database/sql.
const DriverName = "litebind"

func init() {
	sql.Register(DriverName, &Driver{})
}

// Driver implements the database/sql/driver.Driver interface
type Driver struct {
	mu       sync.Mutex
	binding  *litebind.Binding
	opts     []litebind.OpenOption
	initOnce sync.Once
	initErr  error
}

func (d *Driver) init() error {
	d.initOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.binding != nil {
			return
		}
		cfg := config.Load()
		d.binding, d.initErr = litebind.New(cfg.Binding(nil))
		d.opts = cfg.OpenOptions()
	})
	if d.initErr != nil {
		return fmt.Errorf("failed to initialize SQLite: %w", d.initErr)
	}
	return nil
}

// Open returns a new connection to the database
func (d *Driver) Open(name string) (driver.Conn, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	return d.open(name)
}

func (d *Driver) open(name string) (driver.Conn, error) {
	conn, err := d.binding.Open(name, d.opts...)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// OpenConnector returns a new connector
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	if err := d.init(); err != nil {
		return nil, err
	}

	return &Connector{
		driver: d,
		name:   name,
	}, nil
}

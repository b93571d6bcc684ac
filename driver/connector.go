package driver

import (
	"context"
	"database/sql/driver"

	"github.com/connerohnesorge/litebind"
)

// Connector implements the database/sql/driver.Connector interface
type Connector struct {
	driver *Driver
	name   string
}

// NewConnector returns a connector opening name on an explicitly constructed
// Binding, for use with sql.OpenDB.
func NewConnector(b *litebind.Binding, name string, opts ...litebind.OpenOption) *Connector {
	d := &Driver{binding: b, opts: opts}
	d.initOnce.Do(func() {})
	return &Connector{driver: d, name: name}
}

// Connect returns a new connection
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return c.driver.open(c.name)
}

// Driver returns the underlying driver
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

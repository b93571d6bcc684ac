// Package litebind binds the SQLite C API to Go without cgo.
//
// A Binding selects the engine: the SQLite library transpiled to Go
// (the default) or the system libsqlite3 loaded at run time. Connections
// prepare and step statements directly; rows come back either through a
// callback or a Cursor the caller iterates and closes.
//
// Usage:
//
//	b, err := litebind.New(litebind.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := b.Open("app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	err = conn.ExecuteEach("select id, name from users where age > ?",
//	    func(row litebind.Row, fields []string) error {
//	        fmt.Println(row[0].Int(), row[1].Text())
//	        return nil
//	    }, 21)
//
// For database/sql, import the driver package and open the "litebind" driver.
package litebind

// Version is the version of the litebind module
const Version = "0.1.0"

// MemoryPath is the path of a private in-memory database. Open uses it when
// no path is given.
const MemoryPath = ":memory:"

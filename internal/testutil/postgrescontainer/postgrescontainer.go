package postgrescontainer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/adeilh/vacation/internal/testutil/container"
)

const (
	hostPort = "55432"
	user     = "vacation"
	password = "secret"
	dbName   = "vacation_test"
)

var pg = container.New(container.Options{
	Name:      "vacation-postgres-test",
	Image:     "postgres:16-alpine",
	HostPort:  hostPort,
	GuestPort: "5432",
	Env: map[string]string{
		"POSTGRES_USER":     user,
		"POSTGRES_PASSWORD": password,
		"POSTGRES_DB":       dbName,
	},
	Ready:   ping,
	Timeout: 30 * time.Second,
})

// Addr returns host:port for connecting to the test Postgres instance.
func Addr() string { return "127.0.0.1:" + hostPort }

// DSN returns a lib/pq formatted connection string.
func DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, Addr(), dbName)
}

// Setup launches the Postgres container if it isn't already running.
func Setup() error { return pg.Setup() }

// Teardown stops the container launched by Setup.
func Teardown() error { return pg.Teardown() }

func ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	db, err := sql.Open("postgres", DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

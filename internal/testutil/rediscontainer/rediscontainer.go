package rediscontainer

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/adeilh/vacation/internal/testutil/container"
)

const hostPort = "6390"

var rd = container.New(container.Options{
	Name:      "vacation-redis-test",
	Image:     "redis:7-alpine",
	HostPort:  hostPort,
	GuestPort: "6379",
	Ready:     ping,
	Timeout:   10 * time.Second,
})

// Addr exposes the Redis host:port combination used by integration tests.
func Addr() string { return "127.0.0.1:" + hostPort }

// Setup runs the container and waits until it answers PING.
func Setup() error { return rd.Setup() }

// Teardown stops the Redis container if it is running.
func Teardown() error { return rd.Teardown() }

func ping() error {
	conn, err := net.DialTimeout("tcp", Addr(), 200*time.Millisecond)
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("*1\r\n$4\r\nPING\r\n")); err != nil {
		return err
	}
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	if !strings.Contains(line, "PONG") {
		return fmt.Errorf("unexpected PING reply %q", strings.TrimSpace(line))
	}
	return nil
}

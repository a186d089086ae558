// Package container starts throwaway docker containers for integration tests.
package container

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Options describes a container started from a stock image.
type Options struct {
	Name      string
	Image     string
	HostPort  string
	GuestPort string
	Env       map[string]string
	// Ready is polled until it returns nil or the timeout elapses.
	Ready   func() error
	Timeout time.Duration
}

// Container tracks one started container. Setup is idempotent.
type Container struct {
	opts     Options
	once     sync.Once
	setupErr error
}

func New(opts Options) *Container {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Container{opts: opts}
}

// Setup runs the container if it is not running yet and waits until it is ready.
func (c *Container) Setup() error {
	c.once.Do(func() {
		if _, err := exec.LookPath("docker"); err != nil {
			c.setupErr = fmt.Errorf("docker executable not found: %w", err)
			return
		}
		_ = c.stop()
		args := []string{"run", "-d", "--rm", "--name", c.opts.Name, "-p", c.opts.HostPort + ":" + c.opts.GuestPort}
		for k, v := range c.opts.Env {
			args = append(args, "-e", k+"="+v)
		}
		args = append(args, c.opts.Image)
		if err := runDocker(args...); err != nil {
			c.setupErr = err
			return
		}
		c.setupErr = c.waitReady()
	})
	return c.setupErr
}

// Teardown stops the container started by Setup.
func (c *Container) Teardown() error {
	if c.setupErr != nil {
		return c.setupErr
	}
	return c.stop()
}

func (c *Container) waitReady() error {
	if c.opts.Ready == nil {
		return nil
	}
	deadline := time.Now().Add(c.opts.Timeout)
	var last error
	for time.Now().Before(deadline) {
		if last = c.opts.Ready(); last == nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return errors.Join(fmt.Errorf("%s did not become ready in %s", c.opts.Name, c.opts.Timeout), last)
}

func (c *Container) stop() error {
	output, err := exec.Command("docker", "stop", c.opts.Name).CombinedOutput()
	if err != nil {
		if strings.Contains(string(output), "No such container") {
			return nil
		}
		return fmt.Errorf("docker stop failed: %w: %s", err, output)
	}
	return nil
}

func runDocker(args ...string) error {
	output, err := exec.Command("docker", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker %s failed: %w: %s", args[0], err, output)
	}
	return nil
}

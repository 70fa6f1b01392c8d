// Package packagekit asks PackageKit to install packages over D-Bus.
package packagekit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"

	"printdoctor/internal/config"
	"printdoctor/internal/logging"
)

const (
	serviceName   = "org.freedesktop.PackageKit"
	objectPath    = dbus.ObjectPath("/org/freedesktop/PackageKit")
	installMethod = "org.freedesktop.PackageKit.Modify.InstallPackageNames"

	busNameHasOwner        = "org.freedesktop.DBus.NameHasOwner"
	busListActivatableName = "org.freedesktop.DBus.ListActivatableNames"
)

// DefaultInteraction is the interaction mode sent with install requests.
const DefaultInteraction = "hide-finished"

// ErrUnavailable reports that PackageKit cannot be reached.
var ErrUnavailable = errors.New("packagekit unavailable")

// Conn is the subset of *dbus.Conn the client uses.
type Conn interface {
	BusObject() dbus.BusObject
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	Close() error
}

// Client sends install requests to PackageKit.
type Client struct {
	conn        Conn
	interaction string
	logger      *slog.Logger
}

// Connect opens the configured bus and confirms PackageKit is owned or
// activatable on it.
func Connect(ctx context.Context, cfg config.PackageKit, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%w: disabled in configuration", ErrUnavailable)
	}
	var (
		conn *dbus.Conn
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Bus)) {
	case "system":
		conn, err = dbus.ConnectSystemBus(dbus.WithContext(ctx))
	default:
		conn, err = dbus.ConnectSessionBus(dbus.WithContext(ctx))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s bus: %w", ErrUnavailable, cfg.Bus, err)
	}
	client, err := NewWithConn(ctx, conn, cfg.Interaction, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return client, nil
}

// NewWithConn wraps an existing bus connection.
func NewWithConn(ctx context.Context, conn Conn, interaction string, logger *slog.Logger) (*Client, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: no bus connection", ErrUnavailable)
	}
	if strings.TrimSpace(interaction) == "" {
		interaction = DefaultInteraction
	}
	if err := serviceReachable(ctx, conn.BusObject()); err != nil {
		return nil, err
	}
	return &Client{
		conn:        conn,
		interaction: interaction,
		logger:      logging.NewComponentLogger(logger, "packagekit"),
	}, nil
}

func serviceReachable(ctx context.Context, bus dbus.BusObject) error {
	var owned bool
	if err := bus.CallWithContext(ctx, busNameHasOwner, 0, serviceName).Store(&owned); err != nil {
		return fmt.Errorf("%w: query name owner: %w", ErrUnavailable, err)
	}
	if owned {
		return nil
	}
	var activatable []string
	if err := bus.CallWithContext(ctx, busListActivatableName, 0).Store(&activatable); err != nil {
		return fmt.Errorf("%w: list activatable names: %w", ErrUnavailable, err)
	}
	if slices.Contains(activatable, serviceName) {
		return nil
	}
	return fmt.Errorf("%w: %s not on bus", ErrUnavailable, serviceName)
}

// InstallPackageName requests installation of name without waiting for the
// transaction. Only failure to send the request is reported.
func (c *Client) InstallPackageName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("package name required")
	}
	obj := c.conn.Object(serviceName, objectPath)
	call := obj.GoWithContext(ctx, installMethod, dbus.FlagNoReplyExpected, nil, uint32(0), []string{name}, c.interaction)
	if call != nil && call.Err != nil {
		return fmt.Errorf("install %s: %w", name, call.Err)
	}
	logging.WithContext(ctx, c.logger).Info("package install requested",
		logging.String("package", name),
		logging.String("interaction", c.interaction),
	)
	return nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

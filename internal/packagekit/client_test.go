package packagekit_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/godbus/dbus/v5"

	"printdoctor/internal/config"
	"printdoctor/internal/packagekit"
)

type call struct {
	method string
	flags  dbus.Flags
	args   []interface{}
}

// fakeObject implements dbus.BusObject; unused methods panic via the nil embed.
type fakeObject struct {
	dbus.BusObject
	replies map[string][]interface{}
	errs    map[string]error
	calls   []call
}

func (f *fakeObject) CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, call{method: method, flags: flags, args: args})
	return &dbus.Call{Method: method, Body: f.replies[method], Err: f.errs[method]}
}

func (f *fakeObject) GoWithContext(ctx context.Context, method string, flags dbus.Flags, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, call{method: method, flags: flags, args: args})
	return &dbus.Call{Method: method, Err: f.errs[method]}
}

type fakeConn struct {
	bus    *fakeObject
	pk     *fakeObject
	closed bool
}

func (c *fakeConn) BusObject() dbus.BusObject { return c.bus }

func (c *fakeConn) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	if dest != "org.freedesktop.PackageKit" || path != "/org/freedesktop/PackageKit" {
		panic("unexpected object " + dest)
	}
	return c.pk
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newConn(owned bool, activatable ...string) *fakeConn {
	return &fakeConn{
		bus: &fakeObject{replies: map[string][]interface{}{
			"org.freedesktop.DBus.NameHasOwner":         {owned},
			"org.freedesktop.DBus.ListActivatableNames": {activatable},
		}},
		pk: &fakeObject{},
	}
}

func TestNewWithConnRequiresService(t *testing.T) {
	if _, err := packagekit.NewWithConn(context.Background(), newConn(false, "org.example.Other"), "", nil); !errors.Is(err, packagekit.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := packagekit.NewWithConn(context.Background(), newConn(false, "org.freedesktop.PackageKit"), "", nil); err != nil {
		t.Fatalf("activatable service should be reachable: %v", err)
	}
	if _, err := packagekit.NewWithConn(context.Background(), newConn(true), "", nil); err != nil {
		t.Fatalf("owned service should be reachable: %v", err)
	}
}

func TestNewWithConnBusError(t *testing.T) {
	conn := newConn(false)
	conn.bus.errs = map[string]error{"org.freedesktop.DBus.NameHasOwner": errors.New("bus gone")}
	if _, err := packagekit.NewWithConn(context.Background(), conn, "", nil); !errors.Is(err, packagekit.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestInstallPackageNameIsFireAndForget(t *testing.T) {
	conn := newConn(true)
	client, err := packagekit.NewWithConn(context.Background(), conn, "", nil)
	if err != nil {
		t.Fatalf("NewWithConn: %v", err)
	}
	if err := client.InstallPackageName(context.Background(), "printer-driver-gutenprint"); err != nil {
		t.Fatalf("InstallPackageName: %v", err)
	}

	if len(conn.pk.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(conn.pk.calls))
	}
	got := conn.pk.calls[0]
	if got.method != "org.freedesktop.PackageKit.Modify.InstallPackageNames" {
		t.Fatalf("unexpected method %s", got.method)
	}
	if got.flags&dbus.FlagNoReplyExpected == 0 {
		t.Fatal("expected no-reply flag")
	}
	want := []interface{}{uint32(0), []string{"printer-driver-gutenprint"}, "hide-finished"}
	if !reflect.DeepEqual(got.args, want) {
		t.Fatalf("args = %#v, want %#v", got.args, want)
	}

	if err := client.Close(); err != nil || !conn.closed {
		t.Fatalf("Close = %v, closed=%v", err, conn.closed)
	}
}

func TestInstallPackageNameReportsSendFailure(t *testing.T) {
	conn := newConn(true)
	conn.pk.errs = map[string]error{"org.freedesktop.PackageKit.Modify.InstallPackageNames": errors.New("denied")}
	client, err := packagekit.NewWithConn(context.Background(), conn, "never", nil)
	if err != nil {
		t.Fatalf("NewWithConn: %v", err)
	}
	if err := client.InstallPackageName(context.Background(), "hplip"); err == nil {
		t.Fatal("expected error")
	}
	if err := client.InstallPackageName(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestConnectDisabled(t *testing.T) {
	_, err := packagekit.Connect(context.Background(), config.PackageKit{Enabled: false}, nil)
	if !errors.Is(err, packagekit.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

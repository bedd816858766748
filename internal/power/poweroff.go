package power

import (
	"github.com/godbus/dbus"
)

const (
	login1Name = "org.freedesktop.login1"
	login1Path = "/org/freedesktop/login1"
)

// PowerOff asks systemd-logind to power the board off.
func PowerOff() error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	obj := conn.Object(login1Name, login1Path)
	return obj.Call(login1Name+".Manager.PowerOff", 0, false).Err
}

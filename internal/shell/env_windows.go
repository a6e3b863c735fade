//go:build windows

package shell

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const userEnvironmentKey = `Environment`

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
	broadcastWaitMs = 5000
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

// setUserEnv writes a user-scoped environment variable to the registry
func setUserEnv(name, value string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, userEnvironmentKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open user environment key: %w", err)
	}
	defer k.Close()

	if value == "" {
		if err := k.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	} else if err := k.SetStringValue(name, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}

	return broadcastSettingChange()
}

// prependUserPath puts dir first in the user PATH unless it is already there
func prependUserPath(dir string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, userEnvironmentKey, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open user environment key: %w", err)
	}
	defer k.Close()

	current, valType, err := k.GetStringValue("Path")
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("failed to read user PATH: %w", err)
	}
	if pathListContains(current, dir) {
		return nil
	}

	updated := dir
	if current != "" {
		updated = dir + ";" + current
	}

	if valType == registry.SZ {
		err = k.SetStringValue("Path", updated)
	} else {
		err = k.SetExpandStringValue("Path", updated)
	}
	if err != nil {
		return fmt.Errorf("failed to write user PATH: %w", err)
	}

	return broadcastSettingChange()
}

// broadcastSettingChange tells running programs the environment changed.
// Already open consoles still need a restart.
func broadcastSettingChange() error {
	param, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return err
	}
	var result uintptr
	r, _, callErr := procSendMessageTimeoutW.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		broadcastWaitMs,
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		return fmt.Errorf("failed to broadcast WM_SETTINGCHANGE: %w", callErr)
	}
	return nil
}

package domain

// Setting is a key/value pair in the device's local settings table.
type Setting struct {
	Key   string
	Value string
}

// Well-known setting keys.
const (
	SettingActiveEvent      = "active_event"
	SettingPermittedSectors = "permitted_sectors"
	SettingDeviceName       = "device_name"
	SettingLastSync         = "last_sync"
)

package adapter

import (
	"fmt"

	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/dbusx"
	"github.com/jy1655/BzPeri/gatt"
	"github.com/jy1655/BzPeri/internal/blelog"
)

var advertiseLog = blelog.New("adapter.advertise")

// maxAdvertisingPayloadBytes is the size of one BLE advertising PDU's
// AD structure area (31 bytes), grounded on
// other_examples/BrooksWimer-SyncSonicPi__gatt_server.go's
// Advertisement, which builds the same fields (Type, ServiceUUIDs,
// LocalName, Includes) without ever checking they fit.
const maxAdvertisingPayloadBytes = 31

// flagsFieldBytes accounts for the AD flags structure BlueZ always
// prepends (length, type, one flags byte).
const flagsFieldBytes = 3

// EstimatePayloadBytes sums the AD structure bytes BlueZ will need to
// encode data, each entry as length-prefixed (1 byte length + 1 byte
// AD type + payload):
//   - one 16-bit service UUID costs 2 payload bytes
//   - one 32-bit/128-bit service UUID costs 4 or 16 payload bytes
//   - LocalName costs len(name) payload bytes
//   - tx-power costs 1 payload byte, appearance costs 2
func EstimatePayloadBytes(data *gatt.AdvertisementData) int {
	total := flagsFieldBytes

	var uuid16, uuid32, uuid128 int
	for _, u := range data.ServiceUUIDs {
		if _, ok := u.Short16(); ok {
			uuid16 += 2
			continue
		}
		if _, ok := u.Short32(); ok {
			uuid32 += 4
			continue
		}
		uuid128 += 16
	}
	if uuid16 > 0 {
		total += 2 + uuid16
	}
	if uuid32 > 0 {
		total += 2 + uuid32
	}
	if uuid128 > 0 {
		total += 2 + uuid128
	}

	for _, inc := range data.Includes {
		switch inc {
		case gatt.IncludeTxPower:
			total += 2 + 1
		case gatt.IncludeAppearance:
			total += 2 + 2
		}
	}
	if data.LocalName != "" {
		total += 2 + len(data.LocalName)
	}

	return total
}

// ValidateAdvertisingBudget rejects an AdvertisementData whose encoded
// AD structures would overflow a single advertising PDU.
func ValidateAdvertisingBudget(data *gatt.AdvertisementData) error {
	if n := EstimatePayloadBytes(data); n > maxAdvertisingPayloadBytes {
		return fmt.Errorf("adapter: advertising payload is %d bytes, exceeds the %d-byte budget", n, maxAdvertisingPayloadBytes)
	}
	return nil
}

// FitServiceUUIDsToBudget returns the subset of data.ServiceUUIDs that
// should actually be advertised: custom 128-bit (and 32-bit) UUIDs are
// dropped first since only the short forms fit the legacy 31-byte AD
// budget affordably, then 16-bit UUIDs are added back in order up to
// whatever budget remains for the rest of data's fields. The GATT tree
// itself still exposes every service regardless of what this trims;
// only the advertisement's own ServiceUUIDs field is budget-constrained.
func FitServiceUUIDsToBudget(data *gatt.AdvertisementData) []bzpath.GattUUID {
	budget := maxAdvertisingPayloadBytes - nonUUIDPayloadBytes(data)

	var dropped int
	var short []bzpath.GattUUID
	for _, u := range data.ServiceUUIDs {
		if _, ok := u.Short16(); ok {
			short = append(short, u)
			continue
		}
		dropped++
	}

	var kept []bzpath.GattUUID
	for _, u := range short {
		// 2 bytes of AD-structure header plus 2 bytes per 16-bit UUID
		// kept so far, including this candidate.
		if cost := 2 + 2*(len(kept)+1); cost > budget {
			dropped++
			continue
		}
		kept = append(kept, u)
	}

	if dropped > 0 {
		advertiseLog.Warnf("dropped %d service UUID(s) from advertisement to fit the %d-byte legacy AD budget", dropped, maxAdvertisingPayloadBytes)
	}
	return kept
}

// nonUUIDPayloadBytes is EstimatePayloadBytes minus whatever
// ServiceUUIDs would contribute, i.e. the budget left over for UUIDs
// once flags, name, and Includes are accounted for.
func nonUUIDPayloadBytes(data *gatt.AdvertisementData) int {
	without := *data
	without.ServiceUUIDs = nil
	return EstimatePayloadBytes(&without)
}

// Advertise registers the advertisement object already published at
// advPath with BlueZ's LEAdvertisingManager1 on this controller's
// adapter. It neither checks the payload budget nor publishes the
// object; callers do both before calling it.
func (c *Controller) Advertise(pub *dbusx.Publisher, advPath bzpath.ObjectPath) error {
	return pub.RegisterAdvertisement(c.path, advPath)
}

// StopAdvertising unregisters the advertisement previously registered
// with Advertise.
func (c *Controller) StopAdvertising(pub *dbusx.Publisher, advPath bzpath.ObjectPath) error {
	return pub.UnregisterAdvertisement(c.path, advPath)
}

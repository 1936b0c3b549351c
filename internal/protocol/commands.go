package protocol

import "fmt"

// Scan type identifiers used in ScanStarted events and engine state.
const (
	ScanTypeWifi      = "wifi"
	ScanTypeBluetooth = "bluetooth"
	ScanTypeAP        = "ap"
)

// Marauder CLI command strings, sent newline-terminated over the link.
const (
	CmdScanAP      = "scanap"
	CmdScanStation = "scansta"
	CmdSniffBT     = "sniffbt"
	CmdStopScan    = "stopscan"

	CmdAttackDeauth      = "attack -t deauth"
	CmdAttackBeaconFlood = "attack -t beacon -r"
	CmdAttackRickroll    = "attack -t rickroll"
)

// CmdSelectAP returns the command selecting an AP by scan-result index,
// a prerequisite for targeted attacks.
func CmdSelectAP(index int) string {
	return fmt.Sprintf("select -a %d", index)
}

// CmdBLESpam returns the BLE spam command for a target vendor profile.
// The target must be validated with ValidBLESpamTarget first.
func CmdBLESpam(target string) string {
	return fmt.Sprintf("blespam -t %s", target)
}

// bleSpamTargets is the fixed set of vendor profiles the firmware supports.
var bleSpamTargets = map[string]struct{}{
	"apple":   {},
	"samsung": {},
	"google":  {},
	"windows": {},
	"flipper": {},
	"all":     {},
}

// ValidBLESpamTarget reports whether target is a supported BLE spam profile.
func ValidBLESpamTarget(target string) bool {
	_, ok := bleSpamTargets[target]
	return ok
}

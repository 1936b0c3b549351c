package engine

import (
	"fmt"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// Command operations translate high-level actions into Marauder CLI
// commands. Each validates its arguments locally, sends through the
// link, updates currentScan optimistically (the device's own
// ScanStarted/ScanStopped events are advisory), and records an activity
// entry. Failures never reach the caller: invalid arguments and send
// errors surface only in the activity log.

// StartWifiScan starts a WiFi access-point scan.
func (e *Engine) StartWifiScan() {
	e.command(protocol.CmdScanAP, "wifi_ap", "Requested WiFi AP scan")
}

// StartStationScan starts a WiFi station scan.
func (e *Engine) StartStationScan() {
	e.command(protocol.CmdScanStation, "wifi_sta", "Requested WiFi station scan")
}

// StartBleScan starts a BLE device scan.
func (e *Engine) StartBleScan() {
	e.command(protocol.CmdSniffBT, "ble", "Requested BLE scan")
}

// StopScan stops whatever scan or attack is currently running.
func (e *Engine) StopScan() {
	if err := e.link.Send(protocol.CmdStopScan); err != nil {
		e.commandFailed(protocol.CmdStopScan, err)
		return
	}
	e.logActivity("Requested scan stop")
	e.notify(NotifyUpdate, nil)
}

// AttackDeauth selects the AP at apIndex and launches a deauth attack.
// An out-of-range index sends nothing and is surfaced only in the
// activity log.
func (e *Engine) AttackDeauth(apIndex int) {
	e.mu.RLock()
	var target *protocol.APFound
	if apIndex >= 0 && apIndex < len(e.aps) {
		ap := e.aps[apIndex]
		target = &ap
	}
	e.mu.RUnlock()

	if target == nil {
		e.logActivity(fmt.Sprintf("Invalid AP index: %d", apIndex))
		e.notify(NotifyUpdate, nil)
		return
	}

	if err := e.link.Send(protocol.CmdSelectAP(apIndex)); err != nil {
		e.commandFailed(protocol.CmdSelectAP(apIndex), err)
		return
	}
	if err := e.link.Send(protocol.CmdAttackDeauth); err != nil {
		e.commandFailed(protocol.CmdAttackDeauth, err)
		return
	}

	e.mu.Lock()
	e.currentScan = "attack_deauth"
	e.appendActivity(fmt.Sprintf("Deauth attack on AP %s (%s)", target.SSID, target.BSSID))
	e.mu.Unlock()
	e.notify(NotifyUpdate, nil)
}

// AttackBeaconFlood launches a random beacon flood attack.
func (e *Engine) AttackBeaconFlood() {
	e.command(protocol.CmdAttackBeaconFlood, "attack_beacon", "Beacon flood attack started")
}

// AttackRickroll launches the rickroll beacon attack.
func (e *Engine) AttackRickroll() {
	e.command(protocol.CmdAttackRickroll, "attack_rickroll", "Rickroll beacon attack started")
}

// BleSpam launches a BLE spam attack against a target vendor profile
// (apple, samsung, google, windows, flipper, or all). An unknown target
// sends nothing.
func (e *Engine) BleSpam(target string) {
	if !protocol.ValidBLESpamTarget(target) {
		e.logActivity(fmt.Sprintf("Invalid BLE spam target: %q", target))
		e.notify(NotifyUpdate, nil)
		return
	}
	e.command(protocol.CmdBLESpam(target), "ble_spam_"+target,
		fmt.Sprintf("BLE spam started (target=%s)", target))
}

// command is the shared send / update / log / notify path.
func (e *Engine) command(cmd, scan, activity string) {
	if err := e.link.Send(cmd); err != nil {
		e.commandFailed(cmd, err)
		return
	}

	e.mu.Lock()
	e.currentScan = scan
	e.appendActivity(activity)
	e.mu.Unlock()
	e.notify(NotifyUpdate, nil)
}

// commandFailed records a send failure in the activity log.
func (e *Engine) commandFailed(cmd string, err error) {
	e.logger.Warn("command send failed", "command", cmd, "error", err)
	e.logActivity(fmt.Sprintf("Command failed: %s (%v)", cmd, err))
	e.notify(NotifyUpdate, nil)
}

// StartSession begins recording events to a new session file and
// returns its path.
func (e *Engine) StartSession() (string, error) {
	path, err := e.recorder.Start()
	if err != nil {
		e.logActivity(fmt.Sprintf("Session start failed: %v", err))
		e.notify(NotifyUpdate, nil)
		return "", err
	}
	e.logActivity("Session recording started: " + path)
	e.notify(NotifyUpdate, nil)
	return path, nil
}

// StopSession flushes and closes the active session file, if any.
func (e *Engine) StopSession() {
	path := e.recorder.Path()
	e.recorder.Stop()
	if path != "" {
		e.logActivity("Session recording stopped: " + path)
		e.notify(NotifyUpdate, nil)
	}
}

// IsRecording reports whether a session is currently being recorded.
func (e *Engine) IsRecording() bool {
	return e.recorder.IsRecording()
}

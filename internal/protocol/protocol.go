// Package protocol defines the daemon's wire vocabulary: command names,
// request builders and the classification of replies.
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/runaway-guard/runaway-guard/internal/models"
)

// Commands understood by the daemon.
const (
	CmdPing            = "ping"
	CmdListProcesses   = "list_processes"
	CmdGetAlerts       = "get_alerts"
	CmdKillProcess     = "kill_process"
	CmdListWhitelist   = "list_whitelist"
	CmdAddWhitelist    = "add_whitelist"
	CmdRemoveWhitelist = "remove_whitelist"
	CmdGetConfig       = "get_config"
	CmdUpdateConfig    = "update_config"
)

// Reply discriminators sent by the daemon.
const (
	TypeAlert    = "alert"
	TypeStatus   = "status"
	TypeResponse = "response"
	TypePong     = "pong"
)

// DefaultAlertLimit is used when a caller asks for alerts without a limit.
const DefaultAlertLimit = 50

// Request is a client→daemon frame.
type Request struct {
	Cmd    string `json:"cmd"`
	Params any    `json:"params,omitempty"`
	ID     string `json:"id,omitempty"`
}

// GetAlertsParams are the parameters of get_alerts.
type GetAlertsParams struct {
	Limit uint32 `json:"limit"`
	Since string `json:"since,omitempty"`
}

// KillProcessParams are the parameters of kill_process.
type KillProcessParams struct {
	PID    uint32 `json:"pid"`
	Signal string `json:"signal"`
}

// AddWhitelistParams are the parameters of add_whitelist.
type AddWhitelistParams struct {
	Pattern   string `json:"pattern"`
	MatchType string `json:"match_type"`
}

// RemoveWhitelistParams are the parameters of remove_whitelist.
type RemoveWhitelistParams struct {
	ID int64 `json:"id"`
}

func newRequest(cmd string, params any) Request {
	return Request{Cmd: cmd, Params: params, ID: uuid.NewString()}
}

// Ping builds a liveness check.
func Ping() Request { return newRequest(CmdPing, nil) }

// ListProcesses builds a request for the monitored processes.
func ListProcesses() Request { return newRequest(CmdListProcesses, nil) }

// ListWhitelist builds a request for the whitelist entries.
func ListWhitelist() Request { return newRequest(CmdListWhitelist, nil) }

// GetConfig builds a request for the daemon configuration.
func GetConfig() Request { return newRequest(CmdGetConfig, nil) }

// GetAlerts asks for the most recent stored alerts. A non-positive limit
// falls back to DefaultAlertLimit.
func GetAlerts(limit int) Request {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	return newRequest(CmdGetAlerts, GetAlertsParams{Limit: uint32(limit)})
}

// KillProcess asks the daemon to deliver signal (e.g. "SIGTERM") to pid.
func KillProcess(pid uint32, signal string) Request {
	return newRequest(CmdKillProcess, KillProcessParams{PID: pid, Signal: signal})
}

// AddWhitelist builds a request that exempts pattern from alerts.
func AddWhitelist(pattern, matchType string) Request {
	return newRequest(CmdAddWhitelist, AddWhitelistParams{Pattern: pattern, MatchType: matchType})
}

// RemoveWhitelist builds a request that deletes the entry with id.
func RemoveWhitelist(id int64) Request {
	return newRequest(CmdRemoveWhitelist, RemoveWhitelistParams{ID: id})
}

// UpdateConfig builds a request that replaces the daemon configuration.
func UpdateConfig(cfg *models.DaemonConfig) Request {
	return newRequest(CmdUpdateConfig, cfg)
}

// ResponseError extracts the daemon's {"error": "..."} payload, if any.
func ResponseError(data json.RawMessage) (string, bool) {
	var obj struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj.Error == nil {
		return "", false
	}
	return *obj.Error, true
}

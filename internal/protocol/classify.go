package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/runaway-guard/runaway-guard/internal/channel"
)

// Kind is the typed category of a daemon reply.
type Kind int

const (
	KindUnknown Kind = iota
	KindAlert
	KindStatus
	KindPong
	KindProcessList
	KindAlertList
	KindWhitelist
	KindConfig
	// KindResponse is a command response with no more specific shape.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindAlert:
		return "alert"
	case KindStatus:
		return "status"
	case KindPong:
		return "pong"
	case KindProcessList:
		return "process_list"
	case KindAlertList:
		return "alert_list"
	case KindWhitelist:
		return "whitelist"
	case KindConfig:
		return "config"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Classify routes a reply to its typed category. cmd is the command the
// reply answers: the echoed cmd if the daemon sent one, otherwise the
// correlated request (may be empty).
//
// List payloads are classified by the fields of their first element; the
// command name is only consulted for empty lists and object payloads. A
// non-empty list that matches no known shape is a plain KindResponse.
func Classify(msg channel.Message, cmd string) Kind {
	if msg.Cmd != "" {
		cmd = msg.Cmd
	}

	switch msg.Type {
	case TypeAlert:
		return KindAlert
	case TypeStatus:
		return KindStatus
	case TypePong:
		return KindPong
	case TypeResponse:
		return classifyResponse(msg.Data, cmd)
	default:
		return KindUnknown
	}
}

func classifyResponse(data json.RawMessage, cmd string) Kind {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return KindResponse
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return KindResponse
		}
		if len(items) == 0 {
			return listKindForCommand(cmd)
		}
		return sniffListElement(items[0])
	case '{':
		if _, isErr := ResponseError(trimmed); isErr {
			return KindResponse
		}
		if cmd == CmdGetConfig {
			return KindConfig
		}
	}
	return KindResponse
}

func sniffListElement(first json.RawMessage) Kind {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(first, &fields); err != nil {
		return KindResponse
	}
	has := func(k string) bool {
		_, ok := fields[k]
		return ok
	}

	switch {
	case has("cpu_percent"):
		return KindProcessList
	case has("pattern") && has("match_type"):
		// Whitelist rows may carry a reason too.
		return KindWhitelist
	case has("reason"):
		return KindAlertList
	default:
		return KindResponse
	}
}

func listKindForCommand(cmd string) Kind {
	switch cmd {
	case CmdListWhitelist:
		return KindWhitelist
	case CmdListProcesses:
		return KindProcessList
	case CmdGetAlerts:
		return KindAlertList
	default:
		return KindResponse
	}
}

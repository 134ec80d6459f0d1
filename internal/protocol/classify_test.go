package protocol

import (
	"encoding/json"
	"testing"

	"github.com/runaway-guard/runaway-guard/internal/channel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  channel.Message
		cmd  string
		want Kind
	}{
		{
			name: "alert push",
			msg:  channel.Message{Type: TypeAlert, Data: json.RawMessage(`{"pid":1,"name":"a","reason":"hang","severity":"warning"}`)},
			want: KindAlert,
		},
		{
			name: "status push",
			msg:  channel.Message{Type: TypeStatus, Data: json.RawMessage(`{"monitored_count":3,"alert_count":0}`)},
			want: KindStatus,
		},
		{
			name: "pong",
			msg:  channel.Message{Type: TypePong},
			want: KindPong,
		},
		{
			name: "process list by cpu_percent",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"pid":1,"name":"init","cpu_percent":0.1}]`)},
			want: KindProcessList,
		},
		{
			name: "alert list by reason",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"id":7,"pid":1,"reason":"cpu_high"}]`)},
			want: KindAlertList,
		},
		{
			name: "whitelist by pattern and match_type",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"id":1,"pattern":"firefox","match_type":"exact"}]`)},
			want: KindWhitelist,
		},
		{
			name: "whitelist row with a reason",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"id":1,"pattern":"make","match_type":"exact","reason":"build"}]`)},
			want: KindWhitelist,
		},
		{
			name: "pattern without match_type is not a whitelist",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"pattern":"firefox"}]`)},
			want: KindResponse,
		},
		{
			name: "shape sniffing wins over correlated command",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"cpu_percent":5}]`)},
			cmd:  CmdListWhitelist,
			want: KindProcessList,
		},
		{
			name: "empty list correlated with list_whitelist",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[]`)},
			cmd:  CmdListWhitelist,
			want: KindWhitelist,
		},
		{
			name: "empty list correlated with echoed cmd",
			msg:  channel.Message{Type: TypeResponse, Cmd: CmdGetAlerts, Data: json.RawMessage(`[]`)},
			cmd:  CmdListWhitelist,
			want: KindAlertList,
		},
		{
			name: "empty list without correlation",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[]`)},
			want: KindResponse,
		},
		{
			name: "unknown non-empty list",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`[{"foo":1}]`)},
			cmd:  CmdListProcesses,
			want: KindResponse,
		},
		{
			name: "config object",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`{"general":{}}`)},
			cmd:  CmdGetConfig,
			want: KindConfig,
		},
		{
			name: "config error",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`{"error":"Not implemented"}`)},
			cmd:  CmdGetConfig,
			want: KindResponse,
		},
		{
			name: "success object",
			msg:  channel.Message{Type: TypeResponse, Data: json.RawMessage(`{"success":true}`)},
			cmd:  CmdKillProcess,
			want: KindResponse,
		},
		{
			name: "unknown type",
			msg:  channel.Message{Type: "bogus"},
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.msg, tt.cmd); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestWireShape(t *testing.T) {
	frame, err := channel.Encode(KillProcess(42, "SIGTERM"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded struct {
		Cmd    string            `json:"cmd"`
		ID     string            `json:"id"`
		Params KillProcessParams `json:"params"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Cmd != CmdKillProcess || decoded.Params.PID != 42 || decoded.Params.Signal != "SIGTERM" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.ID == "" {
		t.Error("request id is empty")
	}

	frame, err = channel.Encode(ListProcesses())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := raw["params"]; ok {
		t.Errorf("list_processes carries params: %s", frame)
	}
}

func TestGetAlertsDefaultLimit(t *testing.T) {
	req := GetAlerts(0)
	params, ok := req.Params.(GetAlertsParams)
	if !ok {
		t.Fatalf("params type = %T", req.Params)
	}
	if params.Limit != DefaultAlertLimit {
		t.Errorf("limit = %d, want %d", params.Limit, DefaultAlertLimit)
	}
}

func TestResponseError(t *testing.T) {
	if msg, ok := ResponseError(json.RawMessage(`{"error":"Invalid signal"}`)); !ok || msg != "Invalid signal" {
		t.Errorf("ResponseError = %q, %v", msg, ok)
	}
	if _, ok := ResponseError(json.RawMessage(`{"success":true}`)); ok {
		t.Error("success payload reported as error")
	}
	if _, ok := ResponseError(json.RawMessage(`[]`)); ok {
		t.Error("list payload reported as error")
	}
}

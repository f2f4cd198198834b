package liveroom

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/biliterm/internal/bilibili"
)

type command struct {
	Cmd  string          `json:"cmd"`
	Info json.RawMessage `json:"info"`
	Data json.RawMessage `json:"data"`
}

type giftData struct {
	UID      uint64 `json:"uid"`
	Uname    string `json:"uname"`
	GiftName string `json:"giftName"`
	Num      int    `json:"num"`
	Action   string `json:"action"`
}

type interactData struct {
	UID     uint64 `json:"uid"`
	Uname   string `json:"uname"`
	MsgType int    `json:"msg_type"`
}

// Decode converts a danmaku frame into a feed event. ok is false for
// frames that carry nothing to show.
func Decode(msg bilibili.Message, now time.Time) (Event, bool, error) {
	if msg.Op == bilibili.OpHeartbeatReply {
		return Event{Kind: KindPopularity, Time: now, Value: msg.Popularity}, true, nil
	}
	if msg.Op != bilibili.OpMessage {
		return Event{}, false, nil
	}

	var cmd command
	if err := json.Unmarshal(msg.Body, &cmd); err != nil {
		return Event{}, false, fmt.Errorf("decoding command: %w", err)
	}

	// Some commands carry a suffix such as "DANMU_MSG:4:0:2:2:2:0".
	name, _, _ := strings.Cut(cmd.Cmd, ":")
	switch name {
	case "DANMU_MSG":
		return decodeDanmaku(cmd.Info, now)
	case "SEND_GIFT":
		var g giftData
		if err := json.Unmarshal(cmd.Data, &g); err != nil {
			return Event{}, false, fmt.Errorf("decoding gift: %w", err)
		}
		return Event{Kind: KindGift, Time: now, UID: g.UID, User: g.Uname, Gift: g.GiftName, Count: g.Num}, true, nil
	case "INTERACT_WORD":
		var d interactData
		if err := json.Unmarshal(cmd.Data, &d); err != nil {
			return Event{}, false, fmt.Errorf("decoding interact: %w", err)
		}
		if d.MsgType != 1 {
			return Event{}, false, nil
		}
		return Event{Kind: KindEnter, Time: now, UID: d.UID, User: d.Uname}, true, nil
	default:
		return Event{}, false, nil
	}
}

// decodeDanmaku reads the positional info array: info[1] is the text and
// info[2] is [uid, uname, ...].
func decodeDanmaku(raw json.RawMessage, now time.Time) (Event, bool, error) {
	var info []json.RawMessage
	if err := json.Unmarshal(raw, &info); err != nil {
		return Event{}, false, fmt.Errorf("decoding danmaku info: %w", err)
	}
	if len(info) < 3 {
		return Event{}, false, fmt.Errorf("danmaku info has %d fields", len(info))
	}

	var text string
	if err := json.Unmarshal(info[1], &text); err != nil {
		return Event{}, false, fmt.Errorf("decoding danmaku text: %w", err)
	}
	var user []json.RawMessage
	if err := json.Unmarshal(info[2], &user); err != nil || len(user) < 2 {
		return Event{}, false, fmt.Errorf("decoding danmaku user: %v", err)
	}
	var uid uint64
	var uname string
	_ = json.Unmarshal(user[0], &uid)
	_ = json.Unmarshal(user[1], &uname)

	return Event{Kind: KindDanmaku, Time: now, UID: uid, User: uname, Text: text}, true, nil
}

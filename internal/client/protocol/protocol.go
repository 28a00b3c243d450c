// Package protocol encodes and classifies the JSON text frames exchanged
// with the rendezvous server. Every frame is an object with a string "type".
//
//	client -> server  register    {"username", "ip"}
//	server -> client  ping        {}
//	client -> server  pong        {}
//	server -> client  user_list   {"users": [...]}
//	client -> server  get_ip      {"target"} or {"username"}
//	server -> client  ip_response {"ip"?, "username"?}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	TypeRegister   = "register"
	TypePing       = "ping"
	TypePong       = "pong"
	TypeUserList   = "user_list"
	TypeGetIP      = "get_ip"
	TypeIPResponse = "ip_response"
)

// Field names accepted for the username in a get_ip request.
const (
	LookupFieldTarget   = "target"
	LookupFieldUsername = "username"
)

var (
	ErrMalformed   = errors.New("malformed frame")
	ErrUnknownType = errors.New("unknown frame type")
)

// Frame is a decoded frame. Only the fields relevant to Type are set.
type Frame struct {
	Type string

	// Users is the online snapshot of a user_list frame.
	Users []string

	// Username is set for register, and for ip_response when the server
	// echoes who was looked up.
	Username string

	// IP is the address in register and ip_response. HasIP is false when an
	// ip_response carries no usable address.
	IP    string
	HasIP bool

	// Target is the username requested by get_ip.
	Target string
}

type register struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	IP       string `json:"ip"`
}

type bare struct {
	Type string `json:"type"`
}

func Register(username, ip string) []byte {
	b, _ := json.Marshal(register{Type: TypeRegister, Username: username, IP: ip})
	return b
}

func Pong() []byte {
	b, _ := json.Marshal(bare{Type: TypePong})
	return b
}

func Ping() []byte {
	b, _ := json.Marshal(bare{Type: TypePing})
	return b
}

// ValidLookupField reports whether field can carry the username in get_ip.
func ValidLookupField(field string) bool {
	return field == LookupFieldTarget || field == LookupFieldUsername
}

// GetIP encodes a lookup request putting username under field.
func GetIP(field, username string) ([]byte, error) {
	if !ValidLookupField(field) {
		return nil, fmt.Errorf("unsupported lookup field %q", field)
	}
	return json.Marshal(map[string]string{"type": TypeGetIP, field: username})
}

// UserList encodes a directory snapshot. Used by the server side.
func UserList(users []string) []byte {
	if users == nil {
		users = []string{}
	}
	b, _ := json.Marshal(struct {
		Type  string   `json:"type"`
		Users []string `json:"users"`
	}{TypeUserList, users})
	return b
}

// IPResponse encodes a lookup answer; an empty ip is encoded as absent.
// Used by the server side.
func IPResponse(username, ip string) []byte {
	b, _ := json.Marshal(struct {
		Type     string `json:"type"`
		Username string `json:"username,omitempty"`
		IP       string `json:"ip,omitempty"`
	}{TypeIPResponse, username, ip})
	return b
}

// Parse classifies a frame. It returns ErrMalformed for invalid JSON, a
// missing or non-string type, or fields of the wrong shape, and
// ErrUnknownType for a type outside the protocol.
func Parse(data []byte) (Frame, error) {
	if !gjson.ValidBytes(data) {
		return Frame{}, ErrMalformed
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Frame{}, ErrMalformed
	}
	t := root.Get("type")
	if t.Type != gjson.String {
		return Frame{}, ErrMalformed
	}

	f := Frame{Type: t.Str}
	switch f.Type {
	case TypePing, TypePong:

	case TypeUserList:
		users := root.Get("users")
		if !users.IsArray() {
			return Frame{}, fmt.Errorf("%w: user_list without users array", ErrMalformed)
		}
		f.Users = []string{}
		for _, u := range users.Array() {
			if u.Type != gjson.String {
				return Frame{}, fmt.Errorf("%w: non-string username in user_list", ErrMalformed)
			}
			f.Users = append(f.Users, u.Str)
		}

	case TypeIPResponse:
		if u := root.Get("username"); u.Type == gjson.String {
			f.Username = u.Str
		}
		if ip := root.Get("ip"); ip.Type == gjson.String && ip.Str != "" {
			f.IP, f.HasIP = ip.Str, true
		}

	case TypeRegister:
		f.Username = root.Get("username").String()
		f.IP = root.Get("ip").String()
		f.HasIP = f.IP != ""

	case TypeGetIP:
		if v := root.Get(LookupFieldTarget); v.Exists() {
			f.Target = v.String()
		} else {
			f.Target = root.Get(LookupFieldUsername).String()
		}

	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
	return f, nil
}

// FromServer reports whether frames of type t are sent by the server.
func FromServer(t string) bool {
	switch t {
	case TypePing, TypeUserList, TypeIPResponse:
		return true
	}
	return false
}

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoders(t *testing.T) {
	assert.JSONEq(t, `{"type":"register","username":"alice","ip":"10.0.0.1"}`, string(Register("alice", "10.0.0.1")))
	assert.JSONEq(t, `{"type":"pong"}`, string(Pong()))
	assert.JSONEq(t, `{"type":"ping"}`, string(Ping()))
	assert.JSONEq(t, `{"type":"user_list","users":[]}`, string(UserList(nil)))
	assert.JSONEq(t, `{"type":"ip_response","username":"bob"}`, string(IPResponse("bob", "")))

	b, err := GetIP(LookupFieldTarget, "bob")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"get_ip","target":"bob"}`, string(b))

	b, err = GetIP(LookupFieldUsername, "bob")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"get_ip","username":"bob"}`, string(b))

	_, err = GetIP("name", "bob")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Frame
		err  error
	}{
		{name: "ping", in: `{"type":"ping"}`, want: Frame{Type: TypePing}},
		{name: "user list", in: `{"type":"user_list","users":["a","b"]}`, want: Frame{Type: TypeUserList, Users: []string{"a", "b"}}},
		{name: "empty user list", in: `{"type":"user_list","users":[]}`, want: Frame{Type: TypeUserList, Users: []string{}}},
		{name: "ip found", in: `{"type":"ip_response","ip":"10.0.0.2"}`, want: Frame{Type: TypeIPResponse, IP: "10.0.0.2", HasIP: true}},
		{name: "ip with username", in: `{"type":"ip_response","ip":"10.0.0.2","username":"bob"}`, want: Frame{Type: TypeIPResponse, Username: "bob", IP: "10.0.0.2", HasIP: true}},
		{name: "ip absent", in: `{"type":"ip_response"}`, want: Frame{Type: TypeIPResponse}},
		{name: "ip null", in: `{"type":"ip_response","ip":null}`, want: Frame{Type: TypeIPResponse}},
		{name: "ip empty", in: `{"type":"ip_response","ip":""}`, want: Frame{Type: TypeIPResponse}},
		{name: "register", in: `{"type":"register","username":"a","ip":"1.2.3.4"}`, want: Frame{Type: TypeRegister, Username: "a", IP: "1.2.3.4", HasIP: true}},
		{name: "get_ip target", in: `{"type":"get_ip","target":"bob"}`, want: Frame{Type: TypeGetIP, Target: "bob"}},
		{name: "get_ip username", in: `{"type":"get_ip","username":"bob"}`, want: Frame{Type: TypeGetIP, Target: "bob"}},
		{name: "extra fields ignored", in: `{"type":"ping","seq":3}`, want: Frame{Type: TypePing}},

		{name: "not json", in: `hello`, err: ErrMalformed},
		{name: "array", in: `[1,2]`, err: ErrMalformed},
		{name: "no type", in: `{"users":[]}`, err: ErrMalformed},
		{name: "numeric type", in: `{"type":5}`, err: ErrMalformed},
		{name: "users not array", in: `{"type":"user_list","users":"a"}`, err: ErrMalformed},
		{name: "users missing", in: `{"type":"user_list"}`, err: ErrMalformed},
		{name: "users non-string", in: `{"type":"user_list","users":[1]}`, err: ErrMalformed},
		{name: "unknown", in: `{"type":"chat","text":"hi"}`, err: ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFromServer(t *testing.T) {
	for _, ty := range []string{TypePing, TypeUserList, TypeIPResponse} {
		assert.True(t, FromServer(ty), ty)
	}
	for _, ty := range []string{TypePong, TypeRegister, TypeGetIP, "x"} {
		assert.False(t, FromServer(ty), ty)
	}
}

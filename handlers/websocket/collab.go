package websocket

import (
	"regexp"
	"strings"
	"sync"

	"coderoom-server/rooms"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/engine.io/v2/utils"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// session tracks which room a connection has joined and under what name.
// A connection starts unjoined, holds at most one room at a time and returns
// to unjoined on leave.
type session struct {
	roomKey string
	name    string
}

var (
	sessions      = make(map[socketio.SocketId]*session)
	sessionsMutex sync.RWMutex
)

func getSession(id socketio.SocketId) *session {
	sessionsMutex.RLock()
	defer sessionsMutex.RUnlock()
	return sessions[id]
}

func setSession(id socketio.SocketId, s *session) {
	sessionsMutex.Lock()
	sessions[id] = s
	sessionsMutex.Unlock()
}

// takeSession removes and returns the session, or nil if none exists. Leave
// and disconnect both funnel through it, so a duplicate leave is a no-op.
func takeSession(id socketio.SocketId) *session {
	sessionsMutex.Lock()
	defer sessionsMutex.Unlock()
	s := sessions[id]
	delete(sessions, id)
	return s
}

// stringField extracts a string field from the first payload argument of a
// socket.io event. ok is false when there is no payload, the payload is not
// an object, or the field is absent or not a string.
func stringField(datas []any, key string) (value string, ok bool) {
	if len(datas) == 0 {
		return "", false
	}
	payload, isMap := datas[0].(map[string]any)
	if !isMap {
		return "", false
	}
	value, ok = payload[key].(string)
	return value, ok
}

func SetupSocketIO(registry *rooms.Registry) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(5000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			localhostOrigin,
		},
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		me := socket.Id()
		connID := string(me)

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("join", func(datas ...any) {
			roomKey, _ := stringField(datas, "roomId")
			name, _ := stringField(datas, "userName")
			roomKey = strings.TrimSpace(roomKey)
			name = strings.TrimSpace(name)
			if roomKey == "" || name == "" {
				utils.Log().Printf("rejecting join from %v: missing room id or user name\n", me)
				return
			}

			// A join while already in a room is an implicit leave first.
			leaveCurrentRoom(srv, socket, registry)

			var rm *rooms.Room
			var roster []string
			for {
				rm = registry.GetOrCreate(roomKey)
				if rs, joined := rm.Join(connID, name); joined {
					roster = rs
					break
				}
				// Room was reclaimed between lookup and join; try again.
			}

			setSession(me, &session{roomKey: roomKey, name: name})
			room := socketio.Room(roomKey)
			socket.Join(room)
			utils.Log().Printf("%v joined room %v as %q\n", me, room, name)

			_ = srv.To(room).Emit("userJoined", roster)

			code, language, users := rm.Snapshot()
			_ = socket.Emit("roomState", map[string]any{
				"code":     code,
				"language": language,
				"users":    users,
			})
		})

		socket.On("codeChange", func(datas ...any) {
			sess := getSession(me)
			if sess == nil {
				return
			}
			if roomKey, _ := stringField(datas, "roomId"); roomKey != sess.roomKey {
				return
			}
			rm := registry.Get(sess.roomKey)
			if rm == nil {
				return
			}
			code, _ := stringField(datas, "code")
			if rm.SetCode(connID, code) {
				_ = socket.Broadcast().To(socketio.Room(sess.roomKey)).Emit("codeUpdate", code)
			}
		})

		socket.On("languageChange", func(datas ...any) {
			sess := getSession(me)
			if sess == nil {
				return
			}
			if roomKey, _ := stringField(datas, "roomId"); roomKey != sess.roomKey {
				return
			}
			rm := registry.Get(sess.roomKey)
			if rm == nil {
				return
			}
			language, _ := stringField(datas, "language")
			if rm.SetLanguage(connID, language) {
				_ = socket.Broadcast().To(socketio.Room(sess.roomKey)).Emit("languageUpdate", language)
			}
		})

		socket.On("typing", func(datas ...any) {
			sess := getSession(me)
			if sess == nil {
				return
			}
			if roomKey, _ := stringField(datas, "roomId"); roomKey != sess.roomKey {
				return
			}
			rm := registry.Get(sess.roomKey)
			if rm == nil || !rm.Has(connID) {
				return
			}
			// Pure relay; the room never stores typing state and receivers
			// expire the indicator on their own.
			name, ok := stringField(datas, "userName")
			if !ok || name == "" {
				name = sess.name
			}
			_ = socket.Broadcast().To(socketio.Room(sess.roomKey)).Emit("userTyping", name)
		})

		socket.On("leaveRoom", func(datas ...any) {
			leaveCurrentRoom(srv, socket, registry)
		})

		socket.On("disconnecting", func(datas ...any) {
			utils.Log().Printf("disconnecting %v\n", me)
			leaveCurrentRoom(srv, socket, registry)
		})

		socket.On("disconnect", func(datas ...any) {
			socket.RemoveAllListeners("")
			socket.Disconnect(true)
		})
	})

	return srv
}

// leaveCurrentRoom removes the socket's session from its room, if it has one,
// broadcasts the updated roster to the remaining members and asks the registry
// to reclaim the room when it became empty. Safe to call on unjoined sockets.
func leaveCurrentRoom(srv *socketio.Server, socket *socketio.Socket, registry *rooms.Registry) {
	me := socket.Id()
	sess := takeSession(me)
	if sess == nil {
		return
	}

	room := socketio.Room(sess.roomKey)
	socket.Leave(room)

	rm := registry.Get(sess.roomKey)
	if rm == nil {
		return
	}
	roster, removed, empty := rm.Leave(string(me))
	if !removed {
		return
	}
	utils.Log().Printf("%v left room %v\n", me, room)
	if empty {
		registry.Remove(sess.roomKey)
		return
	}
	_ = srv.To(room).Emit("userJoined", roster)
}

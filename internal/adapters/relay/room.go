package relay

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/veikko/skystrike/internal/core"
	"github.com/veikko/skystrike/internal/domain"
)

func (ctl *Controller) handleCreateRoom(sid core.SessionID, conn *WsConn, data []byte) {
	if _, bound := ctl.Sessions.Lookup(sid); bound {
		ctl.sendError(conn, "already in a room")
		return
	}
	if !ctl.limiter.Allow(sid) {
		ctl.sendError(conn, "too many attempts, slow down")
		return
	}
	var p struct {
		Type       string `json:"type"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad createRoom payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	player, err := domain.NewPlayer(string(sid), p.PlayerName, true)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}

	room, err := ctl.Rooms.Create()
	if err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("create room")
		ctl.sendError(conn, "failed to create room")
		return
	}
	// A fresh room cannot be full.
	if err := room.AddMember(sid, core.NewMemberSession(player, conn)); err != nil {
		ctl.Rooms.Destroy(room.Code())
		ctl.sendError(conn, "failed to create room")
		return
	}
	if err := ctl.Sessions.Bind(sid, room.Code()); err != nil {
		log.Error().Err(err).Str("module", "relay").Str("sid", string(sid)).Msg("bind after create")
	}

	log.Info().Str("module", "relay").Str("room", string(room.Code())).Str("name", p.PlayerName).Msg("room created")
	ctl.sendJSON(conn, struct {
		Type     string `json:"type"`
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
		IsHost   bool   `json:"isHost"`
	}{"roomCreated", string(room.Code()), string(sid), true})
}

func (ctl *Controller) handleJoinRoom(sid core.SessionID, conn *WsConn, data []byte) {
	if _, bound := ctl.Sessions.Lookup(sid); bound {
		ctl.sendError(conn, "already in a room")
		return
	}
	if !ctl.limiter.Allow(sid) {
		ctl.sendError(conn, "too many attempts, slow down")
		return
	}
	var p struct {
		Type       string `json:"type"`
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "relay").Msg("bad joinRoom payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	player, err := domain.NewPlayer(string(sid), p.PlayerName, false)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}

	room, ok := ctl.Rooms.Get(domain.RoomCode(p.RoomCode))
	if !ok {
		ctl.sendError(conn, domain.ErrRoomNotFound.Error())
		return
	}
	if err := room.AddMember(sid, core.NewMemberSession(player, conn)); err != nil {
		if errors.Is(err, domain.ErrRoomFull) {
			ctl.sendError(conn, domain.ErrRoomFull.Error())
			return
		}
		ctl.sendError(conn, "failed to join room")
		return
	}
	if err := ctl.Sessions.Bind(sid, room.Code()); err != nil {
		log.Error().Err(err).Str("module", "relay").Str("sid", string(sid)).Msg("bind after join")
	}

	log.Info().Str("module", "relay").Str("room", p.RoomCode).Str("name", p.PlayerName).Msg("player joined")
	ctl.sendJSON(conn, struct {
		Type     string          `json:"type"`
		RoomCode string          `json:"roomCode"`
		PlayerID string          `json:"playerId"`
		Players  []domain.Player `json:"players"`
	}{"roomJoined", p.RoomCode, string(sid), room.MembersSnapshot()})

	ctl.broadcast(room, struct {
		Type   string        `json:"type"`
		Player domain.Player `json:"player"`
	}{"playerJoined", *player}, sid)
}

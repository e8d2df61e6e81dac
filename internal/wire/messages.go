package wire

import "fmt"

// --- HELLO (1) ---------------------------------------------------------

func EncodeHello() []byte { return EncodeFrame(OpHello, nil) }

func DecodeHello(payload []byte) error {
	if len(payload) != 0 {
		return fmt.Errorf("%w: HELLO payload must be empty, got %d bytes", ErrMalformed, len(payload))
	}
	return nil
}

// --- WELCOME (2) ---------------------------------------------------------

func EncodeWelcome(playerID uint32) []byte {
	w := newWriter(4)
	w.u32(playerID)
	return EncodeFrame(OpWelcome, w.bytesOut())
}

func DecodeWelcome(payload []byte) (playerID uint32, err error) {
	r := newReader(payload)
	if playerID, err = r.u32(); err != nil {
		return 0, err
	}
	if err := r.atEnd(); err != nil {
		return 0, err
	}
	return playerID, nil
}

// --- INPUT (3) ---------------------------------------------------------

const fireBit = 0x10

func EncodeInput(direction uint8, fire bool) []byte {
	w := newWriter(1)
	packed := direction & 0x0F
	if fire {
		packed |= fireBit
	}
	w.u8(packed)
	return EncodeFrame(OpInput, w.bytesOut())
}

func DecodeInput(payload []byte) (direction uint8, fire bool, err error) {
	r := newReader(payload)
	packed, err := r.u8()
	if err != nil {
		return 0, false, err
	}
	if err := r.atEnd(); err != nil {
		return 0, false, err
	}
	return packed & 0x0F, packed&fireBit != 0, nil
}

// --- STATE (4) ---------------------------------------------------------

func EncodeState(msgID, tick uint32, players, enemies, projectiles []EntitySnapshot) []byte {
	w := newWriter(12 + (len(players)+len(enemies)+len(projectiles))*17)
	w.u32(msgID)
	w.u32(tick)
	w.u16(uint16(len(players)))
	w.u16(uint16(len(enemies)))
	w.u16(uint16(len(projectiles)))
	for _, e := range players {
		encodeEntityRow(w, e, true)
	}
	for _, e := range enemies {
		encodeEntityRow(w, e, true)
	}
	for _, e := range projectiles {
		encodeEntityRow(w, e, false)
	}
	return EncodeFrame(OpState, w.bytesOut())
}

func encodeEntityRow(w *writer, e EntitySnapshot, hasHP bool) {
	w.u32(e.ID)
	w.u8(uint8(e.Kind))
	w.f32(e.X)
	w.f32(e.Y)
	if hasHP {
		w.u32(e.HP)
	}
}

func DecodeState(payload []byte) (msgID, tick uint32, players, enemies, projectiles []EntitySnapshot, err error) {
	r := newReader(payload)
	if msgID, err = r.u32(); err != nil {
		return
	}
	if tick, err = r.u32(); err != nil {
		return
	}
	var nPlayers, nEnemies, nProjectiles uint16
	if nPlayers, err = r.u16(); err != nil {
		return
	}
	if nEnemies, err = r.u16(); err != nil {
		return
	}
	if nProjectiles, err = r.u16(); err != nil {
		return
	}
	if players, err = decodeEntityRows(r, int(nPlayers), true); err != nil {
		return
	}
	if enemies, err = decodeEntityRows(r, int(nEnemies), true); err != nil {
		return
	}
	if projectiles, err = decodeEntityRows(r, int(nProjectiles), false); err != nil {
		return
	}
	err = r.atEnd()
	return
}

func decodeEntityRows(r *reader, n int, hasHP bool) ([]EntitySnapshot, error) {
	rows := make([]EntitySnapshot, 0, n)
	for i := 0; i < n; i++ {
		var e EntitySnapshot
		id, err := r.u32()
		if err != nil {
			return nil, err
		}
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}
		x, err := r.f32()
		if err != nil {
			return nil, err
		}
		y, err := r.f32()
		if err != nil {
			return nil, err
		}
		e.ID, e.Kind, e.X, e.Y = id, EntityKind(kind), x, y
		if hasHP {
			hp, err := r.u32()
			if err != nil {
				return nil, err
			}
			e.HP = hp
		}
		rows = append(rows, e)
	}
	return rows, nil
}

// --- ACK (5) ---------------------------------------------------------

func EncodeAck(msgID uint32) []byte {
	w := newWriter(4)
	w.u32(msgID)
	return EncodeFrame(OpAck, w.bytesOut())
}

func DecodeAck(payload []byte) (msgID uint32, err error) {
	r := newReader(payload)
	if msgID, err = r.u32(); err != nil {
		return 0, err
	}
	return msgID, r.atEnd()
}

// --- SCOREBOARD (6) ---------------------------------------------------------

func EncodeScoreboard(entries []ScoreEntry) []byte {
	w := newWriter(2 + len(entries)*12)
	w.u16(uint16(len(entries)))
	for _, e := range entries {
		w.u32(e.PlayerID)
		w.u32(e.Score)
		w.f32(e.TimeSurvived)
	}
	return EncodeFrame(OpScoreboard, w.bytesOut())
}

func DecodeScoreboard(payload []byte) (entries []ScoreEntry, err error) {
	r := newReader(payload)
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	entries = make([]ScoreEntry, 0, count)
	for i := 0; i < int(count); i++ {
		var e ScoreEntry
		if e.PlayerID, err = r.u32(); err != nil {
			return nil, err
		}
		if e.Score, err = r.u32(); err != nil {
			return nil, err
		}
		if e.TimeSurvived, err = r.f32(); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, r.atEnd()
}

// --- LIST_LOBBIES (7) ---------------------------------------------------------

func EncodeListLobbiesRequest() []byte { return EncodeFrame(OpListLobbies, nil) }

func DecodeListLobbiesRequest(payload []byte) error {
	if len(payload) != 0 {
		return fmt.Errorf("%w: LIST_LOBBIES request payload must be empty", ErrMalformed)
	}
	return nil
}

func EncodeListLobbiesResponse(names []string) []byte {
	w := newWriter(2)
	w.u16(uint16(len(names)))
	for _, n := range names {
		w.str8(n)
	}
	return EncodeFrame(OpListLobbies, w.bytesOut())
}

func DecodeListLobbiesResponse(payload []byte) (names []string, err error) {
	r := newReader(payload)
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	names = make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		n, err := r.str8()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, r.atEnd()
}

// --- CREATE_LOBBY (8) ---------------------------------------------------------
//
// The request payload gains an optional trailing length-prefixed password
// (zero length means public). A client that never sends a password omits
// the trailing bytes entirely; DecodeCreateLobbyRequest treats an absent
// trailer as an empty password, so the base spec.md contract (name only)
// round-trips unchanged.

func EncodeCreateLobbyRequest(name, password string) []byte {
	w := newWriter(2 + len(name) + len(password))
	w.str8(name)
	if password != "" {
		w.str8(password)
	}
	return EncodeFrame(OpCreateLobby, w.bytesOut())
}

func DecodeCreateLobbyRequest(payload []byte) (name, password string, err error) {
	r := newReader(payload)
	if name, err = r.str8(); err != nil {
		return "", "", err
	}
	if r.remaining() == 0 {
		return name, "", nil
	}
	if password, err = r.str8(); err != nil {
		return "", "", err
	}
	return name, password, r.atEnd()
}

func EncodeCreateLobbyResponse(lobbyID uint32) []byte {
	w := newWriter(4)
	w.u32(lobbyID)
	return EncodeFrame(OpCreateLobby, w.bytesOut())
}

func DecodeCreateLobbyResponse(payload []byte) (lobbyID uint32, err error) {
	r := newReader(payload)
	if lobbyID, err = r.u32(); err != nil {
		return 0, err
	}
	return lobbyID, r.atEnd()
}

// --- JOIN_LOBBY (9) ---------------------------------------------------------

func EncodeJoinLobbyRequest(lobbyID uint32, password string) []byte {
	w := newWriter(5 + len(password))
	w.u32(lobbyID)
	if password != "" {
		w.str8(password)
	}
	return EncodeFrame(OpJoinLobby, w.bytesOut())
}

func DecodeJoinLobbyRequest(payload []byte) (lobbyID uint32, password string, err error) {
	r := newReader(payload)
	if lobbyID, err = r.u32(); err != nil {
		return 0, "", err
	}
	if r.remaining() == 0 {
		return lobbyID, "", nil
	}
	if password, err = r.str8(); err != nil {
		return 0, "", err
	}
	return lobbyID, password, r.atEnd()
}

func EncodeJoinLobbyResponse(success bool) []byte {
	w := newWriter(1)
	w.bool(success)
	return EncodeFrame(OpJoinLobby, w.bytesOut())
}

func DecodeJoinLobbyResponse(payload []byte) (success bool, err error) {
	r := newReader(payload)
	if success, err = r.boolean(); err != nil {
		return false, err
	}
	return success, r.atEnd()
}

// --- START_GAME (10) ---------------------------------------------------------

func EncodeStartGameRequest() []byte { return EncodeFrame(OpStartGame, nil) }

func DecodeStartGameRequest(payload []byte) error {
	if len(payload) != 0 {
		return fmt.Errorf("%w: START_GAME payload must be empty", ErrMalformed)
	}
	return nil
}

// --- LOBBY_UPDATE (11) ---------------------------------------------------------

func EncodeLobbyUpdate(info string) []byte {
	return EncodeFrame(OpLobbyUpdate, []byte(info))
}

func DecodeLobbyUpdate(payload []byte) (string, error) {
	return string(payload), nil
}

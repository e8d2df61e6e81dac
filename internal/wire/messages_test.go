package wire

import (
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	frame := EncodeFrame(OpInput, []byte{0x16})
	op, version, payload, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if op != OpInput {
		t.Errorf("opcode = %d, want %d", op, OpInput)
	}
	if version != ProtocolVersion {
		t.Errorf("version = %d, want %d", version, ProtocolVersion)
	}
	if len(payload) != 1 || payload[0] != 0x16 {
		t.Errorf("payload = %v, want [0x16]", payload)
	}
}

func TestDecodeFrameRejectsBadVersion(t *testing.T) {
	frame := EncodeFrame(OpHello, nil)
	frame[1] = 2 // corrupt version byte
	_, _, _, err := DecodeFrame(frame)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for bad version, got %v", err)
	}
}

func TestDecodeFrameRejectsLengthMismatch(t *testing.T) {
	frame := EncodeFrame(OpHello, nil)
	frame[3] = 5 // claim 5 payload bytes that aren't there
	_, _, _, err := DecodeFrame(frame)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for length mismatch, got %v", err)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	_, _, payload, err := DecodeFrame(EncodeHello())
	if err != nil {
		t.Fatal(err)
	}
	if err := DecodeHello(payload); err != nil {
		t.Fatalf("DecodeHello: %v", err)
	}
	if err := DecodeHello([]byte{0}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for non-empty HELLO, got %v", err)
	}
}

func TestWelcomeRoundTrip(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeWelcome(42))
	id, err := DecodeWelcome(payload)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
}

func TestInputRoundTrip(t *testing.T) {
	cases := []struct {
		dir  uint8
		fire bool
	}{{6, false}, {1, true}, {9, true}, {5, false}}
	for _, c := range cases {
		_, _, payload, _ := DecodeFrame(EncodeInput(c.dir, c.fire))
		dir, fire, err := DecodeInput(payload)
		if err != nil {
			t.Fatal(err)
		}
		if dir != c.dir || fire != c.fire {
			t.Errorf("got (%d,%v), want (%d,%v)", dir, fire, c.dir, c.fire)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	players := []EntitySnapshot{{ID: 1, Kind: KindPlayer, X: 1.5, Y: 2.5, HP: 100}}
	enemies := []EntitySnapshot{{ID: 2, Kind: KindEnemy, X: 900, Y: 50, HP: 1}}
	projectiles := []EntitySnapshot{{ID: 3, Kind: KindProjectile, X: 95, Y: 100}}

	_, _, payload, _ := DecodeFrame(EncodeState(7, 420, players, enemies, projectiles))
	msgID, tick, p, e, pr, err := DecodeState(payload)
	if err != nil {
		t.Fatal(err)
	}
	if msgID != 7 || tick != 420 {
		t.Errorf("msgID=%d tick=%d, want 7,420", msgID, tick)
	}
	if len(p) != 1 || p[0] != players[0] {
		t.Errorf("players = %+v, want %+v", p, players)
	}
	if len(e) != 1 || e[0] != enemies[0] {
		t.Errorf("enemies = %+v, want %+v", e, enemies)
	}
	if len(pr) != 1 || pr[0].ID != 3 || pr[0].HP != 0 {
		t.Errorf("projectiles = %+v", pr)
	}
}

func TestAckRoundTrip(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeAck(99))
	id, err := DecodeAck(payload)
	if err != nil || id != 99 {
		t.Fatalf("got (%d,%v), want (99,nil)", id, err)
	}
}

func TestScoreboardRoundTrip(t *testing.T) {
	entries := []ScoreEntry{{PlayerID: 1, Score: 30, TimeSurvived: 12.5}}
	_, _, payload, _ := DecodeFrame(EncodeScoreboard(entries))
	got, err := DecodeScoreboard(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != entries[0] {
		t.Errorf("got %+v, want %+v", got, entries)
	}
}

func TestListLobbiesRoundTrip(t *testing.T) {
	if _, _, payload, _ := DecodeFrame(EncodeListLobbiesRequest()); DecodeListLobbiesRequest(payload) != nil {
		t.Fatal("expected empty request to decode cleanly")
	}
	names := []string{"alpha", "beta squad"}
	_, _, payload, _ := DecodeFrame(EncodeListLobbiesResponse(names))
	got, err := DecodeListLobbiesResponse(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != names[0] || got[1] != names[1] {
		t.Errorf("got %v, want %v", got, names)
	}
}

func TestCreateLobbyRoundTripWithoutPassword(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeCreateLobbyRequest("Squad Room", ""))
	name, pass, err := DecodeCreateLobbyRequest(payload)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Squad Room" || pass != "" {
		t.Errorf("got (%q,%q)", name, pass)
	}
}

func TestCreateLobbyRoundTripWithPassword(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeCreateLobbyRequest("Squad Room", "hunter2"))
	name, pass, err := DecodeCreateLobbyRequest(payload)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Squad Room" || pass != "hunter2" {
		t.Errorf("got (%q,%q)", name, pass)
	}
}

func TestJoinLobbyRoundTrip(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeJoinLobbyRequest(7, "hunter2"))
	id, pass, err := DecodeJoinLobbyRequest(payload)
	if err != nil || id != 7 || pass != "hunter2" {
		t.Fatalf("got (%d,%q,%v)", id, pass, err)
	}

	_, _, payload, _ = DecodeFrame(EncodeJoinLobbyResponse(true))
	ok, err := DecodeJoinLobbyResponse(payload)
	if err != nil || !ok {
		t.Fatalf("got (%v,%v)", ok, err)
	}
}

func TestStartGameAndLobbyUpdate(t *testing.T) {
	_, _, payload, _ := DecodeFrame(EncodeStartGameRequest())
	if err := DecodeStartGameRequest(payload); err != nil {
		t.Fatal(err)
	}
	_, _, payload, _ = DecodeFrame(EncodeLobbyUpdate("2/4 ready"))
	info, err := DecodeLobbyUpdate(payload)
	if err != nil || info != "2/4 ready" {
		t.Fatalf("got (%q,%v)", info, err)
	}
}

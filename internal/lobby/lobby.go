// Package lobby implements the Lobby State Machine of spec.md §4.9:
// Waiting → InGame per lobby, plus the supplemented optional
// password-protected join the distillation's original_source dropped.
// No teacher equivalent exists (the MMO teacher has no pre-game lobby
// concept — characters enter the world directly), so this package is
// new code shaped to match the rest of the repo's idiom: plain structs,
// explicit error returns, zap logging at the boundary, and the same
// bcrypt/x-text dependencies the teacher already carries for account
// passwords and client text transcoding.
package lobby

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"go.uber.org/zap"
)

var (
	ErrNotFound       = errors.New("lobby: not found")
	ErrFull           = errors.New("lobby: full")
	ErrAlreadyInGame  = errors.New("lobby: already in game")
	ErrWrongPassword  = errors.New("lobby: wrong password")
	ErrNotOwner       = errors.New("lobby: not owner")
	ErrNameTaken      = errors.New("lobby: name already in use")
	ErrTooManyLobbies = errors.New("lobby: server lobby capacity reached")
)

// State is a lobby's position in the Waiting → InGame state machine.
type State int

const (
	StateWaiting State = iota
	StateInGame
)

// DefaultCapacity bounds lobby membership; original_source has no
// explicit constant here, so this follows spec.md's silence by picking
// a value consistent with the simulation's small-scale co-op shape.
const DefaultCapacity = 4

// Lobby is one waiting room: an owner, its members (peers identified by
// their session's client id), and an optional bcrypt password hash.
type Lobby struct {
	ID           uint32
	Name         string
	Owner        uint32
	Members      []uint32
	Capacity     int
	State        State
	passwordHash []byte // nil when the lobby is public
}

func (l *Lobby) hasPassword() bool { return len(l.passwordHash) > 0 }

// checkPassword reports whether attempt matches the lobby's password.
// A public lobby (no hash set) accepts any attempt, including empty —
// spec.md's base contract for the unextended CREATE_LOBBY/JOIN_LOBBY
// pair is unaffected by this feature.
func (l *Lobby) checkPassword(attempt string) bool {
	if !l.hasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword(l.passwordHash, []byte(attempt)) == nil
}

func (l *Lobby) isMember(clientID uint32) bool {
	for _, m := range l.Members {
		if m == clientID {
			return true
		}
	}
	return false
}

func (l *Lobby) removeMember(clientID uint32) {
	for i, m := range l.Members {
		if m == clientID {
			l.Members = append(l.Members[:i], l.Members[i+1:]...)
			return
		}
	}
}

// Manager owns every lobby for one running server, keyed by assigned id.
// Like the Session Manager, it is driven exclusively from the
// single-threaded game loop — no locking.
type Manager struct {
	lobbies         map[uint32]*Lobby
	nextID          uint32
	nameFold        cases.Caser
	foldedName      map[string]uint32 // folded name -> lobby id, for O(1) duplicate checks
	maxLobbies      int
	defaultCapacity int
	log             *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return NewManagerWithConfig(0, DefaultCapacity, log)
}

// NewManagerWithConfig builds a Manager bounded by the deployment's
// configured server lobby count and per-lobby member capacity, per
// config.LobbyConfig's max_lobbies/default_capacity fields. A non-positive
// maxLobbies means unbounded (package default behavior).
func NewManagerWithConfig(maxLobbies, defaultCapacity int, log *zap.Logger) *Manager {
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultCapacity
	}
	return &Manager{
		lobbies:         make(map[uint32]*Lobby),
		nameFold:        cases.Fold(),
		foldedName:      make(map[string]uint32),
		maxLobbies:      maxLobbies,
		defaultCapacity: defaultCapacity,
		log:             log,
	}
}

// Create starts a new Waiting lobby owned by owner, per spec.md §4.9's
// CREATE_LOBBY transition. An empty password leaves the lobby public. The
// name is compared case- and width-insensitively against every other
// lobby via FoldName, so "Arcade" and "arcade" collide even across
// different Unicode forms of the same letters. Fails with
// ErrTooManyLobbies once the server's configured lobby count is reached.
func (m *Manager) Create(name string, owner uint32, password string) (*Lobby, error) {
	if m.maxLobbies > 0 && len(m.lobbies) >= m.maxLobbies {
		return nil, ErrTooManyLobbies
	}
	folded := m.FoldName(name)
	if _, taken := m.foldedName[folded]; taken {
		return nil, ErrNameTaken
	}

	m.nextID++
	id := m.nextID

	l := &Lobby{
		ID:       id,
		Name:     name,
		Owner:    owner,
		Members:  []uint32{owner},
		Capacity: m.defaultCapacity,
		State:    StateWaiting,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		l.passwordHash = hash
	}
	m.lobbies[id] = l
	m.foldedName[folded] = id
	m.log.Info("lobby created", zap.Uint32("lobbyId", id), zap.String("name", name), zap.Uint32("owner", owner))
	return l, nil
}

// Join adds member to a Waiting lobby with available capacity, per
// spec.md §4.9's JOIN_LOBBY transition. A non-existent id, a full
// lobby, a lobby already InGame, or (for a private lobby) a wrong
// password each fail with a distinct sentinel error so the caller can
// map it to a JOIN_LOBBY failure reply.
func (m *Manager) Join(id uint32, member uint32, password string) (*Lobby, error) {
	l, ok := m.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	if l.State != StateWaiting {
		return nil, ErrAlreadyInGame
	}
	if len(l.Members) >= l.Capacity {
		return nil, ErrFull
	}
	if !l.checkPassword(password) {
		return nil, ErrWrongPassword
	}
	if !l.isMember(member) {
		l.Members = append(l.Members, member)
	}
	return l, nil
}

// Leave removes member from lobby id. If the member was the last one,
// the lobby is destroyed, per spec.md §4.9's "last member leaves" rule.
func (m *Manager) Leave(id uint32, member uint32) {
	l, ok := m.lobbies[id]
	if !ok {
		return
	}
	l.removeMember(member)
	if len(l.Members) == 0 {
		delete(m.lobbies, id)
		delete(m.foldedName, m.FoldName(l.Name))
		m.log.Info("lobby destroyed", zap.Uint32("lobbyId", id))
	}
}

// ListWaiting returns the names of every Waiting lobby, per spec.md
// §4.9's LIST_LOBBIES reply.
func (m *Manager) ListWaiting() []string {
	var names []string
	for _, l := range m.lobbies {
		if l.State == StateWaiting {
			names = append(names, l.Name)
		}
	}
	return names
}

// StartGame transitions a Waiting lobby owned by owner to InGame, per
// spec.md §4.9's START_GAME transition. Any other peer attempting to
// start it fails with ErrNotOwner.
func (m *Manager) StartGame(id uint32, requester uint32) (*Lobby, error) {
	l, ok := m.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	if l.Owner != requester {
		return nil, ErrNotOwner
	}
	l.State = StateInGame
	return l, nil
}

// Get returns the lobby with the given id, if any.
func (m *Manager) Get(id uint32) (*Lobby, bool) {
	l, ok := m.lobbies[id]
	return l, ok
}

// FoldName normalizes a lobby name for case-insensitive comparison,
// using the same golang.org/x/text machinery the teacher reaches for
// when normalizing client-submitted text. width.Fold first collapses
// fullwidth/halfwidth variants (e.g. "ＡＲＣＡＤＥ" vs "ARCADE") to their
// canonical form, then cases.Fold applies Unicode case folding, so
// CREATE_LOBBY's duplicate-name check treats both as the same name.
func (m *Manager) FoldName(name string) string {
	return m.nameFold.String(width.Fold.String(name))
}

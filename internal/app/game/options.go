/*
Package game contains the in-memory presence core of the party-game server.

This file defines GameOptions: the validated, bounded configuration owned by each
game. Parsing is deliberately forgiving — out-of-range numbers clamp and malformed
card-set tokens are skipped, so a bad payload never breaks game creation.
*/
package game

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cardparty/internal/app/prefs"
)

// DefaultTimerMultiplier is the labeled timer speed new games start with.
const DefaultTimerMultiplier = "1.0x"

// gameOptionsWire is the JSON shape options travel in. Numeric fields are pointers so
// an absent field keeps its default instead of clamping zero.
type gameOptionsWire struct {
	CardSets        string  `json:"cardSets"`
	BlanksLimit     *int    `json:"blanksLimit,omitempty"`
	PlayerLimit     *int    `json:"playerLimit,omitempty"`
	SpectatorLimit  *int    `json:"spectatorLimit,omitempty"`
	ScoreLimit      *int    `json:"scoreLimit,omitempty"`
	TimerMultiplier *string `json:"timerMultiplier,omitempty"`
	Password        *string `json:"password,omitempty"`
}

// GameOptionsView is the serialized form sent to clients. Password is only present in
// the privileged view handed to members of the game.
type GameOptionsView struct {
	CardSets        []int  `json:"cardSets"`
	BlanksLimit     int    `json:"blanksLimit"`
	PlayerLimit     int    `json:"playerLimit"`
	SpectatorLimit  int    `json:"spectatorLimit"`
	ScoreLimit      int    `json:"scoreLimit"`
	TimerMultiplier string `json:"timerMultiplier"`
	Password        string `json:"password,omitempty"`
}

// GameOptions is mutated in place by Update so every holder of the pointer observes
// changes immediately. Scalar fields are guarded by mu; the card-set-id set keeps its
// own lock so replacing its contents never blocks scalar reads.
type GameOptions struct {
	mu              sync.RWMutex
	blanksInDeck    int
	playerLimit     int
	spectatorLimit  int
	scoreGoal       int
	password        string
	timerMultiplier string

	idsMu      sync.Mutex
	cardSetIDs map[int]struct{}
}

// optionBounds reads the live bound triples. Fallbacks match the server's shipped
// configuration.
func optionBounds(p *prefs.Preferences) (blanks, score, player, spectator prefs.MinDefaultMax) {
	blanks = p.MinDefaultMax(prefs.KeyBlankCardsLimit, 0, 0, 30)
	score = p.MinDefaultMax(prefs.KeyScoreLimit, 4, 8, 69)
	player = p.MinDefaultMax(prefs.KeyPlayerLimit, 3, 10, 20)
	spectator = p.MinDefaultMax(prefs.KeySpectatorLimit, 0, 10, 20)
	return
}

// NewGameOptions creates options populated with the server-wide defaults.
func NewGameOptions(p *prefs.Preferences) *GameOptions {
	blanks, score, player, spectator := optionBounds(p)

	return &GameOptions{
		blanksInDeck:    blanks.Default,
		scoreGoal:       score.Default,
		playerLimit:     player.Default,
		spectatorLimit:  spectator.Default,
		timerMultiplier: DefaultTimerMultiplier,
		cardSetIDs:      make(map[int]struct{}),
	}
}

// DeserializeGameOptions builds options from a client payload on top of the defaults.
// Numbers outside their bounds clamp, unparseable card-set tokens are skipped, and an
// empty payload yields plain defaults; this never fails.
func DeserializeGameOptions(p *prefs.Preferences, text string) *GameOptions {
	o := NewGameOptions(p)
	if text == "" {
		return o
	}

	var wire gameOptionsWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return o
	}

	for _, token := range strings.Split(wire.CardSets, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		o.cardSetIDs[id] = struct{}{}
	}

	blanks, score, player, spectator := optionBounds(p)

	if wire.BlanksLimit != nil {
		o.blanksInDeck = blanks.Clamp(*wire.BlanksLimit)
	}
	if wire.PlayerLimit != nil {
		o.playerLimit = player.Clamp(*wire.PlayerLimit)
	}
	if wire.SpectatorLimit != nil {
		o.spectatorLimit = spectator.Clamp(*wire.SpectatorLimit)
	}
	if wire.ScoreLimit != nil {
		o.scoreGoal = score.Clamp(*wire.ScoreLimit)
	}
	if wire.TimerMultiplier != nil {
		o.timerMultiplier = *wire.TimerMultiplier
	}
	if wire.Password != nil {
		o.password = *wire.Password
	}

	return o
}

// BlanksInDeck returns the number of blank cards dealt into the deck.
func (o *GameOptions) BlanksInDeck() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.blanksInDeck
}

// PlayerLimit returns the roster capacity for players.
func (o *GameOptions) PlayerLimit() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.playerLimit
}

// SpectatorLimit returns the roster capacity for spectators.
func (o *GameOptions) SpectatorLimit() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.spectatorLimit
}

// ScoreGoal returns the score at which the game ends.
func (o *GameOptions) ScoreGoal() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scoreGoal
}

// Password returns the game password; empty means no password.
func (o *GameOptions) Password() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.password
}

// TimerMultiplier returns the labeled timer speed factor.
func (o *GameOptions) TimerMultiplier() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.timerMultiplier
}

// Update copies the new values into this instance in place, so the owning game and
// anyone else holding the pointer observe them without extra locks. The card-set id
// collection is replaced wholesale under its own lock: concurrent readers see either
// the fully old or fully new membership, never a mix.
func (o *GameOptions) Update(n *GameOptions) {
	n.mu.RLock()
	blanks, player, spectator, score := n.blanksInDeck, n.playerLimit, n.spectatorLimit, n.scoreGoal
	password, timer := n.password, n.timerMultiplier
	n.mu.RUnlock()

	n.idsMu.Lock()
	ids := make(map[int]struct{}, len(n.cardSetIDs))
	for id := range n.cardSetIDs {
		ids[id] = struct{}{}
	}
	n.idsMu.Unlock()

	o.mu.Lock()
	o.blanksInDeck = blanks
	o.playerLimit = player
	o.spectatorLimit = spectator
	o.scoreGoal = score
	o.password = password
	o.timerMultiplier = timer
	o.mu.Unlock()

	o.idsMu.Lock()
	clear(o.cardSetIDs)
	for id := range ids {
		o.cardSetIDs[id] = struct{}{}
	}
	o.idsMu.Unlock()
}

// CardSetIDs returns a sorted snapshot of all selected card-set ids.
func (o *GameOptions) CardSetIDs() []int {
	o.idsMu.Lock()
	ids := make([]int, 0, len(o.cardSetIDs))
	for id := range o.cardSetIDs {
		ids = append(ids, id)
	}
	o.idsMu.Unlock()

	sort.Ints(ids)
	return ids
}

// LocalCardSetIDs returns only the positive ids, the ones resolvable from this
// server's own card database. Non-positive ids reference externally sourced sets.
func (o *GameOptions) LocalCardSetIDs() []int {
	var local []int
	for _, id := range o.CardSetIDs() {
		if id > 0 {
			local = append(local, id)
		}
	}
	return local
}

// Serialize produces the client-facing view. Pass includePassword only for users who
// are members of the game.
func (o *GameOptions) Serialize(includePassword bool) GameOptionsView {
	o.mu.RLock()
	view := GameOptionsView{
		BlanksLimit:     o.blanksInDeck,
		PlayerLimit:     o.playerLimit,
		SpectatorLimit:  o.spectatorLimit,
		ScoreLimit:      o.scoreGoal,
		TimerMultiplier: o.timerMultiplier,
	}
	if includePassword {
		view.Password = o.password
	}
	o.mu.RUnlock()

	view.CardSets = o.CardSetIDs()
	return view
}

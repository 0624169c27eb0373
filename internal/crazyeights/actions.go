package crazyeights

import "github.com/google/uuid"

// actionRegistry maps opaque single-use tokens to moves. Tokens belong
// to the broadcast generation that minted them: every full broadcast
// rotates the registry, so a token handed out before any later mutation
// can never apply after it. Guarded by the owning game's mutex.
type actionRegistry struct {
	generation uint64
	moves      map[string]Move
}

func newActionRegistry() *actionRegistry {
	return &actionRegistry{moves: make(map[string]Move)}
}

// rotate starts a new broadcast generation, expiring every outstanding
// token.
func (r *actionRegistry) rotate() {
	r.generation++
	clear(r.moves)
}

// mint registers a move under a fresh opaque token. Uniqueness matters
// here, not secrecy; a uuid cannot collide with a stale guess by
// accident.
func (r *actionRegistry) mint(m Move) string {
	token := uuid.NewString()
	r.moves[token] = m
	return token
}

// lookup resolves a token to its move and consumes it. A token from an
// expired generation, or one already consumed, is simply not found.
func (r *actionRegistry) lookup(token string) (Move, bool) {
	m, ok := r.moves[token]
	if ok {
		delete(r.moves, token)
	}
	return m, ok
}

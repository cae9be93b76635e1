package capture

// resolveRound consumes the pending actions of the current round. The
// holder's chain is resolved first, then the remaining actions in roster
// order. The caller holds the match lock.
func (m *Match) resolveRound() {
	if m.holder == "" {
		m.holder = m.assignToken()
	}

	// Every iteration removes at least one pending action, so the loop ends.
	for m.holder != "" {
		in, ok := m.pending[m.holder]
		if !ok {
			break
		}

		if pusher, ok := m.pusherOf(m.holder); ok {
			victim := m.holder
			m.push(pusher, victim)
			m.record("", victim, "was pushed and lost the code")
			continue
		}

		delete(m.pending, m.holder)
		switch in.action {
		case ActionPass:
			m.pass(m.holder, in.target)
		case ActionPush:
			m.push(m.holder, in.target)
		case ActionGetReady:
			m.states[m.holder] = StateReady
		default:
			if !m.states[m.holder].down() {
				m.states[m.holder] = StateReady
			}
		}
	}

	for _, id := range m.order {
		in, ok := m.pending[id]
		if !ok {
			continue
		}
		switch in.action {
		case ActionPush:
			m.push(id, in.target)
		case ActionGrab:
			m.grab(id, in.target)
		case ActionGetReady:
			m.states[id] = StateReady
		}
	}

	clear(m.pending)
	m.round++
	m.score()
	if m.round >= m.limit {
		m.finish()
	}
}

// pusherOf returns the first player, in roster order, whose pending action
// pushes target.
func (m *Match) pusherOf(target string) (string, bool) {
	for _, id := range m.order {
		if id == target {
			continue
		}
		if in, ok := m.pending[id]; ok && in.action == ActionPush && in.target == target {
			return id, true
		}
	}
	return "", false
}

// pass hands the token from holder to target. A GRAB aimed at the target
// intercepts the pass; a target that is catching or grabbing receives it;
// otherwise the token is reassigned.
func (m *Match) pass(holder, target string) {
	if target == "" {
		m.states[holder] = StateReady
		m.holder = m.assignToken()
		return
	}

	for _, id := range m.order {
		if id == holder {
			continue
		}
		if in, ok := m.pending[id]; ok && in.action == ActionGrab && in.target == target {
			delete(m.pending, id)
			m.states[id] = StateReady
			m.holder = id
			m.record(id, target, "player intercepted code")
			return
		}
	}

	m.states[holder] = StateReady
	if in, ok := m.pending[target]; ok && in.action.fetches() {
		m.holder = target
		m.record(holder, target, "player passed code to another one")
		return
	}
	m.holder = m.assignToken()
}

// push grounds target and bans source. Both lose their pending actions and
// the token is reassigned if either of them held it. A push without a
// target only costs the pusher its action.
func (m *Match) push(source, target string) {
	delete(m.pending, source)
	if target != "" {
		delete(m.pending, target)
		m.states[target] = StateOnGround
		m.states[source] = StateBanned
		m.record(source, target, "player pushed another one")
	}
	if m.holder == source || (target != "" && m.holder == target) {
		m.holder = ""
		m.holder = m.assignToken()
	}
}

// grab takes the token from target if target holds it right now.
func (m *Match) grab(source, target string) {
	if target == "" || !m.holds(target) {
		return
	}
	m.holder = source
	m.record(source, target, "player grabbed code")
}

// score credits the holder's team for the round just resolved.
func (m *Match) score() {
	switch {
	case m.holder == "":
	case m.teamA.Has(m.holder):
		m.scoreA++
	case m.teamB != nil && m.teamB.Has(m.holder):
		m.scoreB++
	}
}

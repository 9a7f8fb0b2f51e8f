package trainer

import "sync"

// rendezvous is a cyclic barrier: every participant blocks in await until the
// whole party has arrived, the last arrival runs the barrier action, and only
// then is anyone released. The action therefore executes with the system
// fully quiesced, which is what licenses the controller's unlocked mutation
// of the weight tensor, mode, and counter.
type rendezvous struct {
	mu     sync.Mutex
	cond   *sync.Cond
	party  int
	parked int
	round  uint64
	action func()
}

func newRendezvous(party int, action func()) *rendezvous {
	r := &rendezvous{party: party, action: action}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// await blocks the caller until all parties of the current round have
// arrived. The last arrival runs the action before anyone is released.
func (r *rendezvous) await() {
	r.mu.Lock()
	round := r.round
	r.parked++
	if r.parked == r.party {
		r.action()
		r.parked = 0
		r.round++
		r.mu.Unlock()
		r.cond.Broadcast()
		return
	}
	for round == r.round {
		r.cond.Wait()
	}
	r.mu.Unlock()
}

package predict

import (
	"fmt"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// ModelState is a checkpointable snapshot of model parameters, parameter
// name to copied values. Snapshots never alias live tensors, so later
// training steps cannot mutate a saved state.
type ModelState map[string][]float64

// registry tracks named parameter vectors in registration order, which
// fixes the ordering contract of Params.
type registry struct {
	names []string
	vecs  []*autograd.Vec
}

func (r *registry) addVec(name string, v *autograd.Vec) {
	r.names = append(r.names, name)
	r.vecs = append(r.vecs, v)
}

func (r *registry) addLinear(name string, l *autograd.Linear) {
	for i, row := range l.W.Rows {
		r.addVec(fmt.Sprintf("%s.w%d", name, i), row)
	}
	r.addVec(name+".b", l.B)
}

func (r *registry) params() []*autograd.Vec {
	out := make([]*autograd.Vec, len(r.vecs))
	copy(out, r.vecs)
	return out
}

func (r *registry) snapshot() ModelState {
	state := make(ModelState, len(r.vecs))
	for i, name := range r.names {
		data := make([]float64, len(r.vecs[i].Data))
		copy(data, r.vecs[i].Data)
		state[name] = data
	}
	return state
}

func (r *registry) restore(state ModelState) error {
	if len(state) != len(r.names) {
		return errors.Errorf("state holds %d parameters, model has %d", len(state), len(r.names))
	}
	for i, name := range r.names {
		data, ok := state[name]
		if !ok {
			return errors.Errorf("state is missing parameter %s", name)
		}
		if len(data) != len(r.vecs[i].Data) {
			return errors.Errorf("parameter %s has %d values in the state, model expects %d",
				name, len(data), len(r.vecs[i].Data))
		}
		copy(r.vecs[i].Data, data)
	}
	return nil
}

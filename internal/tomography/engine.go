package tomography

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
	"github.com/longthangvu/cutqc-mlft/internal/workers"
)

// minRepetitionsPerSetting is the per-setting shot floor applied in sampling
// mode: each setting receives max(minRepetitionsPerSetting, 2^n) shots
// regardless of the evenly divided budget. This overrides, rather than
// bounds, the per-setting share of the requested total.
const minRepetitionsPerSetting = 10_000

// Backend is the external simulation/sampling collaborator. Probabilities
// returns the exact output distribution of a circuit over the given qubit
// order; Sample draws repeated measurements and returns per-outcome counts.
type Backend interface {
	Probabilities(c *circuit.Circuit, order []circuit.Qubit) ([]float64, error)
	Sample(c *circuit.Circuit, order []circuit.Qubit, repetitions int) (map[circuit.BitString]int, error)
}

// Engine performs fragment tomography against a backend. Fragments are
// processed in parallel; each unit of work reads only its own fragment.
type Engine struct {
	backend Backend
	pool    *workers.Pool
	log     zerolog.Logger
}

// NewEngine creates a tomography engine.
func NewEngine(backend Backend, pool *workers.Pool, log zerolog.Logger) *Engine {
	return &Engine{
		backend: backend,
		pool:    pool,
		log:     log.With().Str("component", "tomography").Logger(),
	}
}

// Perform runs fragment tomography on every fragment. A zero repetition
// budget selects exact mode; otherwise the budget is divided evenly across
// all settings of all fragments, subject to the per-setting floor.
func (e *Engine) Perform(fragments map[string]*cutting.Fragment, basis PrepBasis, repetitions int) (map[string]*Data, error) {
	prepStates, err := PrepStates(basis)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fragments))
	for key := range fragments {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	numSettings := 0
	for _, key := range keys {
		f := fragments[key]
		numSettings += pow(len(prepStates), len(f.QuantumInputs)) * pow(len(PauliBases), len(f.QuantumOutputs))
	}
	repetitionsPerSetting := 0
	if repetitions > 0 {
		repetitionsPerSetting = repetitions / numSettings
	}
	e.log.Debug().
		Int("fragments", len(fragments)).
		Int("settings", numSettings).
		Int("repetitions_per_setting", repetitionsPerSetting).
		Msg("starting fragment tomography")

	results, err := workers.Map(e.pool, keys, func(key string) (*Data, error) {
		data, err := e.PerformSingle(fragments[key], basis, repetitionsPerSetting)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", key, err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Data, len(keys))
	for i, key := range keys {
		out[key] = results[i]
	}
	return out, nil
}

// PerformSingle runs tomography on one fragment. With repetitionsPerSetting
// == 0 the backend's exact distribution is recorded for every outcome;
// otherwise each setting is sampled and empirical frequencies are recorded
// for the outcomes observed.
func (e *Engine) PerformSingle(f *cutting.Fragment, basis PrepBasis, repetitionsPerSetting int) (*Data, error) {
	prepStates, err := PrepStates(basis)
	if err != nil {
		return nil, err
	}

	inputQubits := f.InputQubits()
	outputQubits := f.OutputQubits()
	qubitOrder := append(append([]circuit.Qubit{}, f.CircuitOutputs...), outputQubits...)
	numQubits := len(qubitOrder)
	numCircuitOutputs := len(f.CircuitOutputs)

	if repetitionsPerSetting > 0 {
		floor := minRepetitionsPerSetting
		if 1<<numQubits > floor {
			floor = 1 << numQubits
		}
		repetitionsPerSetting = floor
	}

	data := newData(f, basis)
	for _, preps := range product(prepStates, len(inputQubits)) {
		var prepGates []circuit.Gate
		for i, state := range preps {
			gates, err := PrepOps(state, inputQubits[i])
			if err != nil {
				return nil, err
			}
			prepGates = append(prepGates, gates...)
		}
		prepared := f.Circuit.WithPrefixOps(prepGates)

		for _, bases := range product(PauliBases, len(outputQubits)) {
			var measGates []circuit.Gate
			for i, basisChoice := range bases {
				gates, err := MeasOps(basisChoice, outputQubits[i])
				if err != nil {
					return nil, err
				}
				measGates = append(measGates, gates...)
			}
			setting := prepared.WithSuffixOps(measGates)

			if repetitionsPerSetting == 0 {
				probs, err := e.backend.Probabilities(setting, qubitOrder)
				if err != nil {
					return nil, fmt.Errorf("exact backend: %w", err)
				}
				for index, p := range probs {
					joint := circuit.BitStringFromIndex(index, numQubits)
					circuitOutcome := joint[:numCircuitOutputs]
					quantumOutcome := joint[numCircuitOutputs:]
					data.record(circuitOutcome, NewCondition(preps, bases, quantumOutcome), p)
				}
			} else {
				counts, err := e.backend.Sample(setting, qubitOrder, repetitionsPerSetting)
				if err != nil {
					return nil, fmt.Errorf("sampling backend: %w", err)
				}
				for joint, count := range counts {
					circuitOutcome := joint[:numCircuitOutputs]
					quantumOutcome := joint[numCircuitOutputs:]
					probability := float64(count) / float64(repetitionsPerSetting)
					data.record(circuitOutcome, NewCondition(preps, bases, quantumOutcome), probability)
				}
			}
		}
	}
	return data, nil
}

func pow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

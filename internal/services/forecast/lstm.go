package forecast

import (
	"context"
	"fmt"
	"math"
)

// activation resolves Keras activation names.
func activation(name string) (func(float64) float64, error) {
	switch name {
	case "sigmoid":
		return func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }, nil
	case "hard_sigmoid":
		return func(x float64) float64 { return math.Max(0, math.Min(1, 0.2*x+0.5)) }, nil
	case "tanh":
		return math.Tanh, nil
	case "relu":
		return func(x float64) float64 { return math.Max(0, x) }, nil
	case "linear", "":
		return func(x float64) float64 { return x }, nil
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
}

type layer interface {
	// forward maps a sequence of feature vectors to the next sequence.
	forward(seq [][]float64) [][]float64
	outputSize() int
}

// lstmLayer follows the Keras LSTM cell with gate order input, forget, cell, output.
// kernel is [in][4*units], recurrent is [units][4*units], bias is [4*units].
type lstmLayer struct {
	units           int
	kernel          [][]float64
	recurrent       [][]float64
	bias            []float64
	act             func(float64) float64
	recAct          func(float64) float64
	returnSequences bool
}

func (l *lstmLayer) outputSize() int { return l.units }

func (l *lstmLayer) forward(seq [][]float64) [][]float64 {
	u := l.units
	h := make([]float64, u)
	c := make([]float64, u)
	z := make([]float64, 4*u)
	var outs [][]float64
	if l.returnSequences {
		outs = make([][]float64, 0, len(seq))
	}
	for _, x := range seq {
		copy(z, l.bias)
		for k, xv := range x {
			if xv == 0 {
				continue
			}
			row := l.kernel[k]
			for j := range z {
				z[j] += xv * row[j]
			}
		}
		for k, hv := range h {
			if hv == 0 {
				continue
			}
			row := l.recurrent[k]
			for j := range z {
				z[j] += hv * row[j]
			}
		}
		next := make([]float64, u)
		for j := 0; j < u; j++ {
			ig := l.recAct(z[j])
			fg := l.recAct(z[u+j])
			cg := l.act(z[2*u+j])
			og := l.recAct(z[3*u+j])
			c[j] = fg*c[j] + ig*cg
			next[j] = og * l.act(c[j])
		}
		h = next
		if l.returnSequences {
			outs = append(outs, h)
		}
	}
	if l.returnSequences {
		return outs
	}
	return [][]float64{h}
}

// denseLayer applies to the last element of the incoming sequence.
type denseLayer struct {
	units  int
	kernel [][]float64
	bias   []float64
	act    func(float64) float64
}

func (l *denseLayer) outputSize() int { return l.units }

func (l *denseLayer) forward(seq [][]float64) [][]float64 {
	if len(seq) == 0 {
		return nil
	}
	x := seq[len(seq)-1]
	out := make([]float64, l.units)
	copy(out, l.bias)
	for k, xv := range x {
		row := l.kernel[k]
		for j := range out {
			out[j] += xv * row[j]
		}
	}
	for j := range out {
		out[j] = l.act(out[j])
	}
	return [][]float64{out}
}

// Network is an immutable stack of layers evaluated on the CPU. Safe for concurrent use.
type Network struct {
	lookback int
	features int
	layers   []layer
}

func (n *Network) Lookback() int { return n.lookback }

// Predict evaluates each window independently and returns the first output unit.
func (n *Network) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	seq := make([][]float64, 0, n.lookback)
	for i, w := range windows {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(w) != n.lookback {
			return nil, fmt.Errorf("window %d has length %d, model expects %d", i, len(w), n.lookback)
		}
		seq = seq[:0]
		for _, v := range w {
			seq = append(seq, []float64{v})
		}
		cur := seq
		for _, l := range n.layers {
			cur = l.forward(cur)
		}
		if len(cur) == 0 || len(cur[len(cur)-1]) == 0 {
			return nil, fmt.Errorf("model produced no output")
		}
		out[i] = cur[len(cur)-1][0]
	}
	return out, nil
}

package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	domsvc "CoinScope/internal/domain/service"
)

// RemoteModel calls a TensorFlow Serving style REST endpoint:
// POST {base}/v1/models/{name}:predict with {"instances": [[[x], ...], ...]}.
type RemoteModel struct {
	base     *HTTPServiceBase
	path     string
	lookback int
}

var _ domsvc.Model = (*RemoteModel)(nil)

func NewRemoteModel(baseURL, name string, lookback int, timeout time.Duration) *RemoteModel {
	return &RemoteModel{
		base:     NewHTTPServiceBase(strings.TrimRight(baseURL, "/"), timeout, nil),
		path:     fmt.Sprintf("/v1/models/%s:predict", name),
		lookback: lookback,
	}
}

type predictReq struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResp struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

func (m *RemoteModel) Lookback() int { return m.lookback }

func (m *RemoteModel) Predict(ctx context.Context, windows [][]float64) ([]float64, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	inst := make([][][]float64, len(windows))
	for i, w := range windows {
		steps := make([][]float64, len(w))
		for j, v := range w {
			steps[j] = []float64{v}
		}
		inst[i] = steps
	}

	var resp predictResp
	if err := m.base.PostJSON(ctx, m.path, predictReq{Instances: inst}, &resp); err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remote predict: %s", resp.Error)
	}
	if len(resp.Predictions) != len(windows) {
		return nil, fmt.Errorf("remote predict: got %d predictions for %d windows", len(resp.Predictions), len(windows))
	}
	out := make([]float64, len(windows))
	for i, p := range resp.Predictions {
		if len(p) == 0 {
			return nil, fmt.Errorf("remote predict: empty prediction %d", i)
		}
		out[i] = p[0]
	}
	return out, nil
}

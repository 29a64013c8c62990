package scenario

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Scenario a scripted run of protocol operations against a fresh state
type Scenario struct {
	// unix seconds the clock starts at
	Start int64
	Steps []Step
}

// Step one scripted operation
type Step struct {
	Op         string         `json:"op"`
	Asset      common.Address `json:"asset,omitempty"`
	User       common.Address `json:"user,omitempty"`
	OnBehalfOf common.Address `json:"on_behalf_of,omitempty"`
	Payer      common.Address `json:"payer,omitempty"`
	To         common.Address `json:"to,omitempty"`
	Amount     string         `json:"amount,omitempty"`
	Mode       string         `json:"mode,omitempty"`
	TokenID    uint64         `json:"token_id,omitempty"`
	Type       uint8          `json:"type,omitempty"`
	Action     uint8          `json:"action,omitempty"`
	Seconds    int64          `json:"seconds,omitempty"`
	// substring of the error the step must fail with
	Expect string `json:"expect,omitempty"`
}

var errNoSteps = errors.New("scenario: no steps")

// Load decodes a yaml scenario. Addresses may be written as hex strings or
// as plain integers, 0x1001 unquoted is the address ending in 1001.
func Load(r io.Reader) (*Scenario, error) {
	var raw struct {
		Start int64                    `yaml:"start"`
		Steps []map[string]interface{} `yaml:"steps"`
	}

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	if len(raw.Steps) == 0 {
		return nil, errNoSteps
	}

	s := &Scenario{Start: raw.Start, Steps: make([]Step, 0, len(raw.Steps))}
	for i, m := range raw.Steps {
		step, err := parseStep(m)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		s.Steps = append(s.Steps, step)
	}

	return s, nil
}

func parseStep(m map[string]interface{}) (Step, error) {
	step := Step{
		Op:     strings.ToLower(cast.ToString(m["op"])),
		Amount: cast.ToString(m["amount"]),
		Mode:   cast.ToString(m["mode"]),
		Expect: cast.ToString(m["expect"]),
	}

	var err error
	for key, dst := range map[string]*common.Address{
		"asset":        &step.Asset,
		"user":         &step.User,
		"on_behalf_of": &step.OnBehalfOf,
		"payer":        &step.Payer,
		"to":           &step.To,
	} {
		if *dst, err = address(m[key]); err != nil {
			return step, fmt.Errorf("%s: %w", key, err)
		}
	}

	if step.TokenID, err = cast.ToUint64E(m["token_id"]); err != nil {
		return step, fmt.Errorf("token_id: %w", err)
	}

	if step.Type, err = cast.ToUint8E(m["type"]); err != nil {
		return step, fmt.Errorf("type: %w", err)
	}

	if step.Action, err = cast.ToUint8E(m["action"]); err != nil {
		return step, fmt.Errorf("action: %w", err)
	}

	if step.Seconds, err = cast.ToInt64E(m["seconds"]); err != nil {
		return step, fmt.Errorf("seconds: %w", err)
	}

	if step.Op == "" {
		return step, errors.New("missing op")
	}

	return step, nil
}

func address(v interface{}) (common.Address, error) {
	switch x := v.(type) {
	case nil:
		return common.Address{}, nil
	case string:
		if !common.IsHexAddress(x) {
			n, ok := new(big.Int).SetString(strings.TrimPrefix(x, "0x"), 16)
			if !ok || !strings.HasPrefix(x, "0x") {
				return common.Address{}, fmt.Errorf("invalid address %q", x)
			}
			return common.BigToAddress(n), nil
		}
		return common.HexToAddress(x), nil
	default:
		n, err := cast.ToUint64E(x)
		if err != nil {
			return common.Address{}, err
		}
		return common.BigToAddress(new(big.Int).SetUint64(n)), nil
	}
}

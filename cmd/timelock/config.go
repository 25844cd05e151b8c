package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/streamflow-finance/timelock/create"
	"github.com/streamflow-finance/timelock/state"
	"gopkg.in/yaml.v3"
)

// streamConfig is a YAML description of a new stream:
//
//	program_id: <base58>
//	metadata: <base58>  # random if omitted
//	accounts:
//	  sender: <base58>
//	  ...
//	params:
//	  start_time: 1700000000
//	  net_amount_deposited: 1000000
//	  ...
type streamConfig struct {
	ProgramID state.PublicKey    `yaml:"program_id"`
	Metadata  state.PublicKey    `yaml:"metadata"`
	Accounts  state.Accounts     `yaml:"accounts"`
	Params    state.CreateParams `yaml:"params"`
}

func decodeStreamConfig(r io.Reader) (*streamConfig, error) {
	var cfg streamConfig

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode stream config")
	}

	if cfg.ProgramID.IsZero() {
		return nil, errors.New("missing program_id")
	}
	if cfg.Metadata.IsZero() {
		cfg.Metadata = randomKey()
	}

	return &cfg, nil
}

func readStreamConfig(path string) (*streamConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open stream config")
	}
	defer f.Close()

	return decodeStreamConfig(f)
}

func readFeeTable(path string) (*create.FeeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open fee table")
	}
	defer f.Close()

	return create.LoadFeeTable(f)
}

func randomKey() state.PublicKey {
	id := uuid.New()
	return state.PublicKey(hash.Sha256(id[:]))
}

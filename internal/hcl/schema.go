package hcl

import "github.com/hashicorp/hcl/v2"

// fileSchema is the top-level structure of one program file for
// decoding. Every block type may appear in any file; the loader merges
// all files into a single program.
type fileSchema struct {
	Operators []*operatorBlock `hcl:"operator,block"`
	Zones     []*zoneBlock     `hcl:"zone,block"`
	Limits    []*limitBlock    `hcl:"safety,block"`
	VM        *vmBlock         `hcl:"vm,block"`
	State     *attrsBlock      `hcl:"state,block"`
	Goal      *attrsBlock      `hcl:"goal,block"`
}

// operatorBlock is a single `operator "kind" "name" { … }` block.
type operatorBlock struct {
	Kind      string      `hcl:"kind,label"`
	Name      string      `hcl:"name,label"`
	DependsOn []string    `hcl:"depends_on,optional"`
	Priority  *int        `hcl:"priority,optional"`
	Arguments *attrsBlock `hcl:"arguments,block"`
	Rate      *rateBlock  `hcl:"rate,block"`
}

// attrsBlock captures a block of free-form attributes whose names are
// chosen by the user. Evaluation is deferred to translation.
type attrsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type rateBlock struct {
	Burst  int `hcl:"burst"`
	Refill int `hcl:"refill,optional"`
}

type zoneBlock struct {
	Name    string   `hcl:"name,label"`
	Members []string `hcl:"members"`
	Policy  string   `hcl:"policy,optional"`
}

type limitBlock struct {
	Key string   `hcl:"key,label"`
	Min *float64 `hcl:"min,optional"`
	Max *float64 `hcl:"max,optional"`
}

type vmBlock struct {
	CheckpointEvery int `hcl:"checkpoint_every,optional"`
	Retention       int `hcl:"retention,optional"`
	FullEvery       int `hcl:"full_every,optional"`
}

// Package parser provides the intermediate, ABI-decoded representation of an
// event log. Values are looked up by argument name regardless of whether the
// argument was indexed (topics) or carried in the log data.
package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DecodedLog represents a decoded Ethereum event log with its arguments and metadata.
// It contains the event name, emitting contract address, and structured argument data.
type DecodedLog struct {
	// LogIndex is the position of the log in the block
	LogIndex uint64
	// Address is the contract address that emitted the event
	Address string
	// Arguments contains the decoded event parameters
	Arguments []Argument
	// EventName is the name of the emitted event
	EventName string
	// OutputData contains the decoded non-indexed event data as a map
	OutputData map[string]interface{}

	BlockNumber      uint64
	TransactionIndex uint64
	TransactionHash  string
}

// Argument represents a single parameter in a decoded event log.
type Argument struct {
	// Name is the parameter name
	Name string
	// Type is the Solidity type of the parameter
	Type string
	// Value is the actual parameter value, only set for indexed parameters
	Value interface{}
	// Indexed indicates whether this was an indexed event parameter
	Indexed bool
}

// Value returns the decoded value of the named argument.
func (d *DecodedLog) Value(name string) (interface{}, bool) {
	for _, arg := range d.Arguments {
		if arg.Name == name && arg.Indexed && arg.Value != nil {
			return arg.Value, true
		}
	}
	if d.OutputData != nil {
		if v, ok := d.OutputData[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (d *DecodedLog) BigValue(name string) (*big.Int, error) {
	v, ok := d.Value(name)
	if !ok {
		return nil, fmt.Errorf("argument '%s' missing from %s", name, d.EventName)
	}
	switch t := v.(type) {
	case *big.Int:
		return t, nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	case uint8:
		return big.NewInt(int64(t)), nil
	}
	return nil, fmt.Errorf("argument '%s' of %s is %T, not an integer", name, d.EventName, v)
}

// AddressValue returns the named address argument as a lowercase 0x string.
func (d *DecodedLog) AddressValue(name string) (string, error) {
	v, ok := d.Value(name)
	if !ok {
		return "", fmt.Errorf("argument '%s' missing from %s", name, d.EventName)
	}
	switch t := v.(type) {
	case common.Address:
		return strings.ToLower(t.Hex()), nil
	case string:
		return strings.ToLower(common.HexToAddress(t).Hex()), nil
	}
	return "", fmt.Errorf("argument '%s' of %s is %T, not an address", name, d.EventName, v)
}

func (d *DecodedLog) StringValue(name string) (string, error) {
	v, ok := d.Value(name)
	if !ok {
		return "", fmt.Errorf("argument '%s' missing from %s", name, d.EventName)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument '%s' of %s is %T, not a string", name, d.EventName, v)
	}
	return s, nil
}

func (d *DecodedLog) BoolValue(name string) (bool, error) {
	v, ok := d.Value(name)
	if !ok {
		return false, fmt.Errorf("argument '%s' missing from %s", name, d.EventName)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument '%s' of %s is %T, not a bool", name, d.EventName, v)
	}
	return b, nil
}

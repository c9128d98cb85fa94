package authenticator

import (
	"errors"
	"fmt"
)

// ErrUnknownChainType is returned for chain types other than Local and External.
var ErrUnknownChainType = errors.New("unknown chain type")

// ChainType selects a configuration group and its invocation semantics.
type ChainType int

const (
	// Local chains validate a username/password pair.
	Local ChainType = iota
	// External chains validate a federated request keyed by a discriminator.
	External

	chainTypeCount
)

var chainTypeNames = [chainTypeCount]string{
	Local:    "authenticators",
	External: "external_authenticators",
}

// String returns the configuration group name of the chain type.
func (c ChainType) String() string {
	if !c.valid() {
		return fmt.Sprintf("ChainType(%d)", int(c))
	}
	return chainTypeNames[c]
}

func (c ChainType) valid() bool {
	return c >= 0 && c < chainTypeCount
}

// ChainTypes returns every chain type in a stable order.
func ChainTypes() []ChainType {
	return []ChainType{Local, External}
}

// ParseChainType accepts the group name or the short form ("local", "external").
func ParseChainType(s string) (ChainType, error) {
	switch s {
	case "authenticators", "local":
		return Local, nil
	case "external_authenticators", "external":
		return External, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChainType, s)
}

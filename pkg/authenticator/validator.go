package authenticator

import (
	"context"
	"time"

	"github.com/doodlesbykumbi/casino-in-go/pkg/metrics"
)

// Validator is the entry point for both validation flows.
type Validator struct {
	registry *Registry
	executor *Executor
}

// NewValidator creates a validator over registry.
func NewValidator(registry *Registry, executor *Executor) *Validator {
	if executor == nil {
		executor = &Executor{}
	}
	return &Validator{registry: registry, executor: executor}
}

// Registry returns the registry the validator reads chains from.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// ValidateLocal tries every local authenticator, in order, with the given
// username and password.
func (v *Validator) ValidateLocal(ctx context.Context, username, password string) (*Result, error) {
	creds := Credentials{Username: username, Password: password}
	return v.run(ctx, Local, func(ctx context.Context, link Link) (UserData, error) {
		return link.Authenticator.Validate(ctx, creds)
	})
}

// ValidateExternal hands req to the external authenticator named by
// discriminator. Every other external authenticator declines without being
// called.
func (v *Validator) ValidateExternal(ctx context.Context, discriminator string, req RequestContext) (*Result, error) {
	creds := Credentials{Params: req.Params, Cookies: req.Cookies}
	return v.run(ctx, External, func(ctx context.Context, link Link) (UserData, error) {
		if link.Name != discriminator {
			return nil, nil
		}
		return link.Authenticator.Validate(ctx, creds)
	})
}

func (v *Validator) run(ctx context.Context, chainType ChainType, invoke InvokeFunc) (*Result, error) {
	start := time.Now()

	chain, err := v.registry.Get(chainType)
	if err != nil {
		v.executor.Metrics.ObserveValidation(chainType.String(), metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	result, err := v.executor.Run(ctx, chainType, chain, invoke)
	outcome := metrics.OutcomeSuccess
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case result == nil:
		outcome = metrics.OutcomeAbsent
	}
	v.executor.Metrics.ObserveValidation(chainType.String(), outcome, time.Since(start))
	return result, err
}

package authenticator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/doodlesbykumbi/casino-in-go/pkg/audit"
	"github.com/doodlesbykumbi/casino-in-go/pkg/metrics"
)

// InvokeFunc validates credentials against one link of a chain.
type InvokeFunc func(ctx context.Context, link Link) (UserData, error)

// Executor walks a chain until one authenticator validates the credentials.
type Executor struct {
	Logger  zerolog.Logger
	Audit   *audit.Logger
	Metrics *metrics.Metrics
}

// Run calls invoke for every link in order and returns the first non-nil
// UserData as a Result. An *AuthenticatorError from invoke is logged and the
// link is skipped; any other error stops the walk and is returned. Run
// returns (nil, nil) when no link validates the credentials.
func (e *Executor) Run(ctx context.Context, chainType ChainType, chain Chain, invoke InvokeFunc) (*Result, error) {
	for _, link := range chain {
		data, err := invoke(ctx, link)
		if err != nil {
			var authErr *AuthenticatorError
			if !errors.As(err, &authErr) {
				return nil, err
			}
			e.abstained(ctx, chainType, link, err)
			continue
		}
		if data == nil {
			continue
		}

		e.validated(ctx, chainType, link, data)
		return &Result{Authenticator: link.Name, Class: link.Class, UserData: data}, nil
	}
	return nil, nil
}

func (e *Executor) abstained(ctx context.Context, chainType ChainType, link Link, err error) {
	e.Logger.Error().
		Err(err).
		Str("chain", chainType.String()).
		Str("authenticator", link.Name).
		Str("class", link.Class).
		Msg("authenticator raised an error")

	e.Audit.Log(audit.ValidationEvent{
		Chain:         chainType.String(),
		Authenticator: link.Name,
		Class:         link.Class,
		ClientIP:      audit.ClientIP(ctx),
		ErrorMessage:  err.Error(),
	})
	e.Metrics.AuthenticatorError(chainType.String(), link.Name)
}

func (e *Executor) validated(ctx context.Context, chainType ChainType, link Link, data UserData) {
	e.Logger.Info().
		Str("chain", chainType.String()).
		Str("authenticator", link.Name).
		Str("class", link.Class).
		Str("username", data.Username()).
		Msg("credentials validated")

	e.Audit.Log(audit.ValidationEvent{
		Chain:         chainType.String(),
		Authenticator: link.Name,
		Class:         link.Class,
		Username:      data.Username(),
		ClientIP:      audit.ClientIP(ctx),
		Success:       true,
	})
	e.Metrics.Success(chainType.String(), link.Name)
}

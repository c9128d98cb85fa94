package authenticator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/casino-in-go/pkg/audit"
	"github.com/doodlesbykumbi/casino-in-go/pkg/metrics"
)

func invokeLocal(ctx context.Context, l Link) (UserData, error) {
	return l.Authenticator.Validate(ctx, Credentials{Username: "alice", Password: "secret"})
}

func TestExecutor_FirstSuccessWins(t *testing.T) {
	var logs bytes.Buffer
	executor := &Executor{Logger: zerolog.New(&logs)}

	a := &fakeAuthenticator{err: NewError("connection refused")}
	b := &fakeAuthenticator{data: UserData{"username": "alice"}}
	c := &fakeAuthenticator{data: UserData{"username": "mallory"}}
	chain := Chain{link("A", a), link("B", b), link("C", c)}

	result, err := executor.Run(context.Background(), Local, chain, invokeLocal)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "B", result.Authenticator)
	assert.Equal(t, "test.B", result.Class)
	assert.Equal(t, UserData{"username": "alice"}, result.UserData)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
	assert.Equal(t, int32(0), c.calls.Load())

	out := logs.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"authenticator":"A"`)
	assert.Contains(t, out, `connection refused`)
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"username":"alice"`)
}

func TestExecutor_AllDecline(t *testing.T) {
	executor := &Executor{Logger: zerolog.Nop()}

	var order []string
	chain := Chain{
		link("A", &fakeAuthenticator{}),
		link("B", &fakeAuthenticator{}),
		link("C", &fakeAuthenticator{err: NewError("timeout")}),
	}

	result, err := executor.Run(context.Background(), Local, chain, func(ctx context.Context, l Link) (UserData, error) {
		order = append(order, l.Name)
		return invokeLocal(ctx, l)
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestExecutor_EmptyChain(t *testing.T) {
	executor := &Executor{Logger: zerolog.Nop()}

	result, err := executor.Run(context.Background(), Local, nil, invokeLocal)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestExecutor_SuccessPositionIndependentOfFailures(t *testing.T) {
	const n = 6
	for p := 0; p < n; p++ {
		for failMask := 0; failMask < 1<<n; failMask++ {
			if failMask&(1<<p) != 0 {
				continue
			}
			t.Run(fmt.Sprintf("p=%d/mask=%b", p, failMask), func(t *testing.T) {
				fakes := make([]*fakeAuthenticator, n)
				chain := make(Chain, n)
				for i := range fakes {
					switch {
					case i == p:
						fakes[i] = &fakeAuthenticator{data: UserData{"username": "alice"}}
					case failMask&(1<<i) != 0:
						fakes[i] = &fakeAuthenticator{err: NewError("down")}
					default:
						fakes[i] = &fakeAuthenticator{}
					}
					chain[i] = link(fmt.Sprintf("auth%d", i), fakes[i])
				}

				executor := &Executor{Logger: zerolog.Nop()}
				result, err := executor.Run(context.Background(), Local, chain, invokeLocal)
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, fmt.Sprintf("auth%d", p), result.Authenticator)

				for i, f := range fakes {
					want := int32(0)
					if i <= p {
						want = 1
					}
					assert.Equal(t, want, f.calls.Load(), "auth%d", i)
				}
			})
		}
	}
}

func TestExecutor_ContractViolationPropagates(t *testing.T) {
	executor := &Executor{Logger: zerolog.Nop()}
	boom := errors.New("nil pointer in backend")

	after := &fakeAuthenticator{data: UserData{"username": "alice"}}
	chain := Chain{
		link("A", &fakeAuthenticator{err: boom}),
		link("B", after),
	}

	result, err := executor.Run(context.Background(), Local, chain, invokeLocal)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(0), after.calls.Load())
}

func TestExecutor_WrappedAuthenticatorError(t *testing.T) {
	executor := &Executor{Logger: zerolog.Nop()}
	wrapped := fmt.Errorf("ldap bind: %w", WrapError(errors.New("i/o timeout"), "directory unavailable"))

	chain := Chain{
		link("A", &fakeAuthenticator{err: wrapped}),
		link("B", &fakeAuthenticator{data: UserData{"username": "bob"}}),
	}

	result, err := executor.Run(context.Background(), Local, chain, invokeLocal)
	require.NoError(t, err)
	assert.Equal(t, "B", result.Authenticator)
}

func TestExecutor_AuditAndMetrics(t *testing.T) {
	var auditBuf bytes.Buffer
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	executor := &Executor{
		Logger:  zerolog.Nop(),
		Audit:   audit.NewLogger(&auditBuf, true),
		Metrics: m,
	}
	chain := Chain{
		link("A", &fakeAuthenticator{err: NewError("down")}),
		link("B", &fakeAuthenticator{data: UserData{"username": "alice"}}),
	}

	ctx := audit.WithClientIP(context.Background(), "10.0.0.7")
	_, err = executor.Run(ctx, Local, chain, invokeLocal)
	require.NoError(t, err)

	out := auditBuf.String()
	assert.Contains(t, out, `[client@43868 ip="10.0.0.7"]`)
	assert.Contains(t, out, "authenticator A failed to validate credentials: down")
	assert.Contains(t, out, "credentials for alice validated by authenticator B")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthenticatorErrors.WithLabelValues("authenticators", "A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Successes.WithLabelValues("authenticators", "B")))
}

package authenticator

import (
	"context"
	"sync/atomic"
)

// fakeAuthenticator records its calls and returns a fixed verdict.
type fakeAuthenticator struct {
	data  UserData
	err   error
	calls atomic.Int32
	seen  []Credentials
}

func (f *fakeAuthenticator) Validate(_ context.Context, creds Credentials) (UserData, error) {
	f.calls.Add(1)
	f.seen = append(f.seen, creds)
	return f.data, f.err
}

func link(name string, a Authenticator) Link {
	return Link{Name: name, Class: "test." + name, Authenticator: a}
}

// countingFactory returns a factory producing fakes and the counter of
// constructions.
func countingFactory(data UserData) (Factory, *atomic.Int32) {
	var built atomic.Int32
	return func(opts Options) (Authenticator, error) {
		built.Add(1)
		return &fakeAuthenticator{data: data}, nil
	}, &built
}

// closingAuthenticator counts Close calls.
type closingAuthenticator struct {
	fakeAuthenticator
	closed   atomic.Int32
	closeErr error
}

func (c *closingAuthenticator) Close() error {
	c.closed.Add(1)
	return c.closeErr
}

package rpc

import (
	"context"

	"github.com/erc7824/solrpc/pkg/sign"
)

type outcome[T any] struct {
	result T
	err    error
}

// sink returns a handler that forwards the first outcome to the channel.
func sink[T any]() (<-chan outcome[T], Handler[T]) {
	ch := make(chan outcome[T], 1)
	return ch, func(result T, err error) {
		select {
		case ch <- outcome[T]{result: result, err: err}:
		default:
		}
	}
}

// await submits req and blocks until its handler fires or ctx is done.
// Cancelling ctx does not withdraw the request.
func await[T any](ctx context.Context, c *Client, req Request, ch <-chan outcome[T]) (T, error) {
	var zero T
	if _, err := c.Submit(ctx, req); err != nil {
		return zero, err
	}

	select {
	case o := <-ch:
		return o.result, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// GetAccountInfo fetches the account at key.
func (c *Client) GetAccountInfo(ctx context.Context, key sign.PublicKey) (AccountInfo, error) {
	ch, h := sink[AccountInfo]()
	return await(ctx, c, NewGetAccountInfo(key, h), ch)
}

// GetRecentBlockhash fetches a blockhash for new transactions.
func (c *Client) GetRecentBlockhash(ctx context.Context) (RecentBlockhash, error) {
	ch, h := sink[RecentBlockhash]()
	return await(ctx, c, NewGetRecentBlockhash(h), ch)
}

func (c *Client) GetHealth(ctx context.Context) (Health, error) {
	ch, h := sink[Health]()
	return await(ctx, c, NewGetHealth(h), ch)
}

// Transfer signs and submits a transfer and returns the signature the node
// acknowledged.
func (c *Client) Transfer(ctx context.Context, p TransferParams) (sign.Signature, error) {
	ch, h := sink[sign.Signature]()
	req, err := NewTransfer(p, h)
	if err != nil {
		return sign.Signature{}, err
	}
	return await(ctx, c, req, ch)
}

// WaitSignature subscribes to sig and blocks until the node reports the
// transaction processed. A failed transaction yields its status together
// with a *TransactionError. The subscription is deregistered if ctx ends
// first.
func (c *Client) WaitSignature(ctx context.Context, sig sign.Signature) (SignatureStatus, error) {
	ch, h := sink[SignatureStatus]()
	sub := NewSignatureSubscribe(sig, h)

	status, err := await(ctx, c, sub, ch)
	if ctx.Err() != nil {
		c.DeregisterSubscription(sub)
	}
	return status, err
}

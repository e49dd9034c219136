// Package rpc is a JSON-RPC 2.0 client for a Solana-style node.
//
// One-shot calls (account lookups, blockhash, health, transaction
// submission) travel as HTTP POSTs; subscriptions travel over a persistent
// websocket. A Client owns both transports and correlates every inbound
// document with the request or subscription it belongs to:
//
//	httpTr := rpc.NewHTTPTransport(rpc.HTTPTransportConfig{URL: httpURL, Timeout: 10 * time.Second}, lg)
//	wsTr := rpc.NewWebsocketTransport(rpc.DefaultWebsocketTransportConfig)
//	if err := wsTr.Dial(ctx, wsURL, nil); err != nil {
//	    return err
//	}
//	client := rpc.NewClient(rpc.ClientConfig{HTTP: httpTr, Stream: wsTr, Logger: lg})
//
//	req := rpc.NewGetAccountInfo(key, func(info rpc.AccountInfo, err error) {
//	    // runs once, on the goroutine that delivered the response
//	})
//	if _, err := client.Submit(ctx, req); err != nil {
//	    return err
//	}
//
// Request ids are small integers reused after completion. A response for an
// id that is not outstanding is dropped. Handlers never run while the
// client's lock is held.
//
// The blocking helpers GetAccountInfo, GetRecentBlockhash, GetHealth,
// Transfer and WaitSignature wrap Submit for callers that prefer a
// synchronous style.
package rpc

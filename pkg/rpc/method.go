package rpc

import (
	"encoding/json"

	"github.com/erc7824/solrpc/pkg/sign"
)

// Method is a JSON-RPC method name understood by the node.
type Method string

const (
	GetAccountInfoMethod     Method = "getAccountInfo"
	GetRecentBlockhashMethod Method = "getRecentBlockhash"
	GetHealthMethod          Method = "getHealth"
	SendTransactionMethod    Method = "sendTransaction"
	SignatureSubscribeMethod Method = "signatureSubscribe"
)

func (m Method) String() string {
	return string(m)
}

// methodSpec is the dispatch-table entry of one request variant.
type methodSpec[T any] struct {
	method Method
	// streaming requests go over the persistent connection.
	streaming bool
	// decodeResult extracts typed fields from a successful result.
	decodeResult func(raw json.RawMessage) (T, error)
	// decodeNotification extracts typed fields from a push notification
	// and reports whether the subscription is finished. Nil for one-shot
	// calls.
	decodeNotification func(raw json.RawMessage) (result T, remove bool, err error)
}

var (
	getAccountInfoSpec = methodSpec[AccountInfo]{
		method:       GetAccountInfoMethod,
		decodeResult: decodeAccountInfo,
	}
	getRecentBlockhashSpec = methodSpec[RecentBlockhash]{
		method:       GetRecentBlockhashMethod,
		decodeResult: decodeRecentBlockhash,
	}
	getHealthSpec = methodSpec[Health]{
		method:       GetHealthMethod,
		decodeResult: decodeHealth,
	}
	sendTransactionSpec = methodSpec[sign.Signature]{
		method:       SendTransactionMethod,
		decodeResult: decodeSignatureResult,
	}
	signatureSubscribeSpec = methodSpec[SignatureStatus]{
		method:             SignatureSubscribeMethod,
		streaming:          true,
		decodeNotification: decodeSignatureNotification,
	}
)

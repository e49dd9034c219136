package rpc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/tidwall/gjson"

	"github.com/erc7824/solrpc/pkg/sign"
	"github.com/erc7824/solrpc/pkg/txn"
)

// AccountInfo is the state of one account as reported by getAccountInfo.
type AccountInfo struct {
	Slot       uint64      `json:"slot"`
	Executable bool        `json:"executable"`
	Lamports   uint64      `json:"lamports"`
	Owner      string      `json:"owner"`
	Data       AccountData `json:"data"`
	RentEpoch  uint64      `json:"rentEpoch"`
}

// AccountData is the encoded account payload. Nodes send either a bare
// base58 string or a [data, encoding] pair.
type AccountData struct {
	Encoded  string `json:"encoded"`
	Encoding string `json:"encoding"`
}

func (d *AccountData) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	switch {
	case v.Type == gjson.String:
		d.Encoded, d.Encoding = v.String(), "base58"
		return nil
	case v.IsArray():
		parts := v.Array()
		if len(parts) != 2 || parts[0].Type != gjson.String || parts[1].Type != gjson.String {
			return fmt.Errorf("account data: expected [data, encoding], got %s", v.Raw)
		}
		d.Encoded, d.Encoding = parts[0].String(), parts[1].String()
		return nil
	default:
		return fmt.Errorf("account data: unexpected %s", v.Type)
	}
}

// Bytes decodes the payload.
func (d AccountData) Bytes() ([]byte, error) {
	switch d.Encoding {
	case "base58", "":
		return base58.Decode(d.Encoded)
	case "base64":
		return base64.StdEncoding.DecodeString(d.Encoded)
	default:
		return nil, fmt.Errorf("unsupported account data encoding %q", d.Encoding)
	}
}

// RecentBlockhash is a blockhash usable in new transactions and the fee
// charged per signature at that block.
type RecentBlockhash struct {
	Slot                 uint64   `json:"slot"`
	Blockhash            txn.Hash `json:"blockhash"`
	LamportsPerSignature uint64   `json:"lamportsPerSignature"`
}

// Health is the getHealth result, "ok" for a healthy node.
type Health string

const HealthOK Health = "ok"

// SignatureStatus is pushed once the subscribed transaction is processed.
// Err holds the node's error value, null on success.
type SignatureStatus struct {
	Slot uint64          `json:"slot"`
	Err  json.RawMessage `json:"err"`
}

// Failed reports whether the transaction was processed with an error.
func (s SignatureStatus) Failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// NewGetAccountInfo asks for the state of the account at key.
func NewGetAccountInfo(key sign.PublicKey, h Handler[AccountInfo]) *Call[AccountInfo] {
	c := newCall(&getAccountInfoSpec, []any{key.String()}, h)
	return &c
}

// NewGetRecentBlockhash asks for a recent blockhash and its fee schedule.
func NewGetRecentBlockhash(h Handler[RecentBlockhash]) *Call[RecentBlockhash] {
	c := newCall(&getRecentBlockhashSpec, nil, h)
	return &c
}

func NewGetHealth(h Handler[Health]) *Call[Health] {
	c := newCall(&getHealthSpec, nil, h)
	return &c
}

// TransferParams describes a lamport transfer to submit.
type TransferParams struct {
	From      sign.Signer
	To        sign.PublicKey
	Lamports  uint64
	Blockhash txn.Hash
}

// Transfer is a sendTransaction call carrying a signed transfer. The
// signature is known as soon as the transaction is built.
type Transfer struct {
	Call[sign.Signature]

	tx *txn.SignedTransaction
}

// NewTransfer builds and signs the transfer transaction. Nothing is sent
// until the returned request is submitted.
func NewTransfer(p TransferParams, h Handler[sign.Signature]) (*Transfer, error) {
	tx, err := txn.BuildTransfer(txn.Transfer{
		From:      p.From,
		To:        p.To,
		Lamports:  p.Lamports,
		Blockhash: p.Blockhash,
		ProgramID: txn.SystemProgramID,
	})
	if err != nil {
		return nil, err
	}

	args := []any{tx.Base64(), map[string]string{"encoding": "base64"}}
	return &Transfer{
		Call: newCall(&sendTransactionSpec, args, h),
		tx:   tx,
	}, nil
}

// Signature returns the transaction signature.
func (t *Transfer) Signature() sign.Signature { return t.tx.Signature() }

// Transaction returns the signed wire form.
func (t *Transfer) Transaction() *txn.SignedTransaction { return t.tx }

// NewSignatureSubscribe asks to be notified once the transaction with sig is
// processed. It is removed after the first notification.
func NewSignatureSubscribe(sig sign.Signature, h Handler[SignatureStatus]) *Subscription[SignatureStatus] {
	return newSubscription(&signatureSubscribeSpec, []any{sig.String()}, h)
}

func decodeAccountInfo(raw json.RawMessage) (AccountInfo, error) {
	var info AccountInfo
	doc := gjson.ParseBytes(raw)

	slot := doc.Get("context.slot")
	value := doc.Get("value")
	if slot.Type != gjson.Number || !value.Exists() {
		return info, malformedf("getAccountInfo: missing context.slot or value")
	}
	if value.Type == gjson.Null {
		return info, ErrAccountNotFound
	}

	var fields struct {
		Executable *bool        `json:"executable"`
		Lamports   *uint64      `json:"lamports"`
		Owner      *string      `json:"owner"`
		Data       *AccountData `json:"data"`
		RentEpoch  *uint64      `json:"rentEpoch"`
	}
	if err := json.Unmarshal([]byte(value.Raw), &fields); err != nil {
		return info, malformedf("getAccountInfo: %v", err)
	}
	if fields.Executable == nil || fields.Lamports == nil || fields.Owner == nil ||
		fields.Data == nil || fields.RentEpoch == nil {
		return info, malformedf("getAccountInfo: missing account fields")
	}

	info.Slot = slot.Uint()
	info.Executable = *fields.Executable
	info.Lamports = *fields.Lamports
	info.Owner = *fields.Owner
	info.Data = *fields.Data
	info.RentEpoch = *fields.RentEpoch
	return info, nil
}

func decodeRecentBlockhash(raw json.RawMessage) (RecentBlockhash, error) {
	var rb RecentBlockhash
	doc := gjson.ParseBytes(raw)

	slot := doc.Get("context.slot")
	hash := doc.Get("value.blockhash")
	fee := doc.Get("value.feeCalculator.lamportsPerSignature")
	if slot.Type != gjson.Number || hash.Type != gjson.String || fee.Type != gjson.Number {
		return rb, malformedf("getRecentBlockhash: missing slot, blockhash or fee")
	}

	h, err := txn.ParseHash(hash.String())
	if err != nil {
		return rb, malformedf("getRecentBlockhash: %v", err)
	}

	rb.Slot = slot.Uint()
	rb.Blockhash = h
	rb.LamportsPerSignature = fee.Uint()
	return rb, nil
}

func decodeHealth(raw json.RawMessage) (Health, error) {
	v := gjson.ParseBytes(raw)
	if v.Type != gjson.String {
		return "", malformedf("getHealth: result is not a string")
	}
	return Health(v.String()), nil
}

func decodeSignatureResult(raw json.RawMessage) (sign.Signature, error) {
	v := gjson.ParseBytes(raw)
	if v.Type != gjson.String {
		return sign.Signature{}, malformedf("sendTransaction: result is not a signature")
	}
	sig, err := sign.ParseSignature(v.String())
	if err != nil {
		return sign.Signature{}, malformedf("sendTransaction: %v", err)
	}
	return sig, nil
}

// decodeSignatureNotification accepts both {context, value: {err}} and a
// bare {err}. The subscription always ends with this notification.
func decodeSignatureNotification(raw json.RawMessage) (SignatureStatus, bool, error) {
	var status SignatureStatus
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return status, true, malformedf("signatureNotification: result is not an object")
	}

	value := doc
	if v := doc.Get("value"); v.IsObject() {
		value = v
		status.Slot = doc.Get("context.slot").Uint()
	}

	errField := value.Get("err")
	if !errField.Exists() {
		return status, true, malformedf("signatureNotification: missing err")
	}
	status.Err = json.RawMessage(errField.Raw)

	if status.Failed() {
		return status, true, &TransactionError{Raw: status.Err}
	}
	return status, true, nil
}
